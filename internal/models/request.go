package models

type CreateListingRequest struct {
	Title        string  `json:"title" binding:"required" example:"2BR apartment in Mikocheni"`
	Description  string  `json:"description,omitempty"`
	Location     string  `json:"location" binding:"required" example:"Dar es Salaam"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	PriceTZS     int64   `json:"price_tzs" binding:"required" example:"450000"`
	Bedrooms     int     `json:"bedrooms" example:"2"`
	Bathrooms    int     `json:"bathrooms" example:"1"`
	PropertyType string  `json:"property_type" example:"apartment"`
	ContactPhone string  `json:"contact_phone,omitempty" example:"+255712345678"`
}

type UpdateListingRequest struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	PriceTZS     *int64   `json:"price_tzs,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
	ContactPhone *string  `json:"contact_phone,omitempty"`
	Status       *string  `json:"status,omitempty" example:"rented"`
}

type RemoveImageRequest struct {
	URL string `json:"url" binding:"required"`
}
