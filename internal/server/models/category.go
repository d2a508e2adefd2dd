package models

// DeriveCategory returns the contact's primary classification label: the
// first entry of categories when any are set, otherwise the explicit
// category value. Called at the write boundary instead of being hidden in a
// persistence hook.
func DeriveCategory(categories []string, category string) string {
	if len(categories) > 0 {
		return categories[0]
	}
	return category
}
