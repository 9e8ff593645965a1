package models

import "time"

type ListingResponse struct {
	ID           string    `json:"listing_id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	PriceTZS     int64     `json:"price_tzs"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	PropertyType string    `json:"property_type"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	Images       []string  `json:"images"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int               `json:"total"`
}

type UploadResponse struct {
	ListingID string        `json:"listing_id"`
	Images    []string      `json:"images"`
	Files     []FileStatus  `json:"files"`
	Status    string        `json:"status"`
	Errors    []UploadError `json:"errors,omitempty"`
}

type FileStatus struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	State    string `json:"state"`
	URL      string `json:"url,omitempty"`
}

type UploadError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
	Stage    string `json:"stage"`
}

type FavoriteListResponse struct {
	Favorites []ListingResponse `json:"favorites"`
}

type GeocodeResponse struct {
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"` // "static" or "remote"
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
