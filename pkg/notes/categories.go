package notes

// categories is fixed and ordered. The form selector, statistics rows and
// counting all iterate it in this order.
var categories = []string{"Task", "Random Thought", "Idea", "Personal"}

// Categories returns a copy of the fixed category list.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// DefaultCategory is preselected when creating a note.
func DefaultCategory() string {
	return categories[0]
}

func IsCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}
