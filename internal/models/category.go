package models

// Category is a referential product grouping. Products and categories are
// matched by slug, case-insensitively.
type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}
