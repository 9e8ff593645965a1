package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Listing struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	Description  sql.NullString
	Location     string
	Latitude     sql.NullFloat64
	Longitude    sql.NullFloat64
	PriceTZS     int64
	Bedrooms     int
	Bathrooms    int
	PropertyType string
	ContactPhone sql.NullString
	Images       pq.StringArray
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Favorite struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ListingID uuid.UUID
	CreatedAt time.Time
}

// ListingFilters narrows and orders ListListings results. Zero values mean
// "no constraint".
type ListingFilters struct {
	Location     string
	MinPrice     int64
	MaxPrice     int64
	MinBedrooms  int
	PropertyType string
	Sort         string // "newest", "price_asc", "price_desc"
	Limit        int
	Offset       int
}
