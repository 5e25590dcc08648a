package models

// Category groups menu items. Ids are small integers allocated from the
// counters collection; items reference them by categoryId.
type Category struct {
	ID   int    `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}
