package notes

import "fmt"

// Note is a short categorized text record.
type Note struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Created  string `json:"created"`
	Dates    string `json:"dates"`
}

// Collection names one of the two note lists. A note lives in exactly one of them.
type Collection int

const (
	Active Collection = iota
	Archived
)

// Collections lists both collections in display order.
var Collections = []Collection{Active, Archived}

func (c Collection) String() string {
	switch c {
	case Active:
		return "active"
	case Archived:
		return "archived"
	default:
		return fmt.Sprintf("collection(%d)", int(c))
	}
}

// Opposite returns the collection an archive toggle moves a note into.
func (c Collection) Opposite() Collection {
	if c == Archived {
		return Active
	}
	return Archived
}

func (c Collection) Valid() bool {
	return c == Active || c == Archived
}

// ParseCollection accepts "active"/"notes" and "archived"/"archivedNotes".
func ParseCollection(s string) (Collection, error) {
	switch s {
	case "active", "notes", "":
		return Active, nil
	case "archived", "archivedNotes":
		return Archived, nil
	default:
		return Active, fmt.Errorf("%w: %q", ErrUnknownCollection, s)
	}
}

// Snapshot is the persisted form of a store: both collections, serialized wholesale.
type Snapshot struct {
	Notes         []*Note `json:"notes"`
	ArchivedNotes []*Note `json:"archivedNotes"`
}

// CategoryStats holds the per-collection note counts of one category.
type CategoryStats struct {
	Category string `json:"category"`
	Active   int    `json:"active"`
	Archived int    `json:"archived"`
}
