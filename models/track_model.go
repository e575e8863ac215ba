package models

import "time"

// Artist is a credited performer. Names are unique; reconciliation reuses an
// existing row on exact match rather than inserting a duplicate.
type Artist struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:200;uniqueIndex;not null"`
	CreatedAt time.Time `json:"-"`
}

// Track is one cached recording, keyed by its ISRC. Rows are only ever created
// by ingestion; repeat ingests of the same code leave existing fields alone.
type Track struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ISRC      string    `json:"isrc" gorm:"size:12;uniqueIndex;not null"`
	Title     string    `json:"title" gorm:"not null"`
	ImageURI  string    `json:"imageUri"`
	Artists   []*Artist `json:"artists" gorm:"many2many:track_artists"`
	CreatedAt time.Time `json:"-"`
}
