package model

// Tag is a row in the `tags` table. Tag names are unique; creating a
// garden with an existing tag name attaches the existing row instead
// of inserting a duplicate. Tags live independently of any single
// garden (many-to-many through garden_tags).
type Tag struct {
	ID   uint64 // tags.id
	Name string // tags.name
}
