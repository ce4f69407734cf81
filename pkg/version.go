package notetable

// Version is the current release of notetable.
const Version = "0.1.0"
