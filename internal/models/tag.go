package models

// Tag is an entry in the known tag vocabulary. The ID is a stable slug;
// Name is the display form used for case-insensitive matching.
type Tag struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}
