package supabase

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"nyumba-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

const listingColumns = `id, user_id, title, description, location, latitude, longitude,
		price_tzs, bedrooms, bathrooms, property_type, contact_phone, images, status,
		created_at, updated_at`

// listingColumnsQualified avoids ambiguity in joined queries.
const listingColumnsQualified = `l.id, l.user_id, l.title, l.description, l.location,
		l.latitude, l.longitude, l.price_tzs, l.bedrooms, l.bathrooms, l.property_type,
		l.contact_phone, l.images, l.status, l.created_at, l.updated_at`

func scanListing(row interface{ Scan(...interface{}) error }) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID, &l.UserID, &l.Title, &l.Description, &l.Location, &l.Latitude, &l.Longitude,
		&l.PriceTZS, &l.Bedrooms, &l.Bathrooms, &l.PropertyType, &l.ContactPhone,
		&l.Images, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (d *DatabaseClient) CreateListing(l *models.Listing) (*models.Listing, error) {
	row := d.db.QueryRow(`
		INSERT INTO listings (id, user_id, title, description, location, latitude, longitude,
			price_tzs, bedrooms, bathrooms, property_type, contact_phone, images, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+listingColumns+`
	`, l.ID, l.UserID, l.Title, l.Description, l.Location, l.Latitude, l.Longitude,
		l.PriceTZS, l.Bedrooms, l.Bathrooms, l.PropertyType, l.ContactPhone,
		pq.StringArray(l.Images), l.Status)

	created, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return created, nil
}

func (d *DatabaseClient) GetListing(listingID uuid.UUID) (*models.Listing, error) {
	row := d.db.QueryRow(`
		SELECT `+listingColumns+`
		FROM listings
		WHERE id = $1
	`, listingID)

	listing, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

// GetListingForUser scopes the lookup to the owner; used before any mutate.
func (d *DatabaseClient) GetListingForUser(listingID, userID uuid.UUID) (*models.Listing, error) {
	row := d.db.QueryRow(`
		SELECT `+listingColumns+`
		FROM listings
		WHERE id = $1 AND user_id = $2
	`, listingID, userID)

	listing, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (d *DatabaseClient) ListListings(filters models.ListingFilters) ([]models.Listing, error) {
	conditions := []string{"status = 'active'"}
	args := []interface{}{}

	addArg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Location != "" {
		conditions = append(conditions, "location ILIKE "+addArg("%"+filters.Location+"%"))
	}
	if filters.MinPrice > 0 {
		conditions = append(conditions, "price_tzs >= "+addArg(filters.MinPrice))
	}
	if filters.MaxPrice > 0 {
		conditions = append(conditions, "price_tzs <= "+addArg(filters.MaxPrice))
	}
	if filters.MinBedrooms > 0 {
		conditions = append(conditions, "bedrooms >= "+addArg(filters.MinBedrooms))
	}
	if filters.PropertyType != "" {
		conditions = append(conditions, "property_type = "+addArg(filters.PropertyType))
	}

	orderBy := "created_at DESC"
	switch filters.Sort {
	case "price_asc":
		orderBy = "price_tzs ASC"
	case "price_desc":
		orderBy = "price_tzs DESC"
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE %s
		ORDER BY %s
		LIMIT %s OFFSET %s
	`, listingColumns, strings.Join(conditions, " AND "), orderBy, addArg(limit), addArg(filters.Offset))

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}

	return listings, rows.Err()
}

func (d *DatabaseClient) ListUserListings(userID uuid.UUID) ([]models.Listing, error) {
	rows, err := d.db.Query(`
		SELECT `+listingColumns+`
		FROM listings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}

	return listings, rows.Err()
}

func (d *DatabaseClient) UpdateListing(l *models.Listing) (*models.Listing, error) {
	row := d.db.QueryRow(`
		UPDATE listings
		SET title = $1, description = $2, location = $3, latitude = $4, longitude = $5,
			price_tzs = $6, bedrooms = $7, bathrooms = $8, property_type = $9,
			contact_phone = $10, status = $11, updated_at = NOW()
		WHERE id = $12 AND user_id = $13
		RETURNING `+listingColumns+`
	`, l.Title, l.Description, l.Location, l.Latitude, l.Longitude,
		l.PriceTZS, l.Bedrooms, l.Bathrooms, l.PropertyType,
		l.ContactPhone, l.Status, l.ID, l.UserID)

	updated, err := scanListing(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return updated, nil
}

// UpdateListingImages replaces the listing's ordered image URL list.
func (d *DatabaseClient) UpdateListingImages(listingID, userID uuid.UUID, images []string) error {
	result, err := d.db.Exec(`
		UPDATE listings
		SET images = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, pq.StringArray(images), listingID, userID)
	if err != nil {
		return fmt.Errorf("failed to update listing images: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("listing not found")
	}
	return nil
}

func (d *DatabaseClient) DeleteListing(listingID, userID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM listings
		WHERE id = $1 AND user_id = $2
	`, listingID, userID)
	return err
}

func (d *DatabaseClient) AddFavorite(userID, listingID uuid.UUID) error {
	_, err := d.db.Exec(`
		INSERT INTO favorites (user_id, listing_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, listing_id) DO NOTHING
	`, userID, listingID)
	return err
}

func (d *DatabaseClient) IsFavorite(userID, listingID uuid.UUID) (bool, error) {
	var count int
	err := d.db.QueryRow(`
		SELECT COUNT(*) FROM favorites
		WHERE user_id = $1 AND listing_id = $2
	`, userID, listingID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

func (d *DatabaseClient) RemoveFavorite(userID, listingID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM favorites
		WHERE user_id = $1 AND listing_id = $2
	`, userID, listingID)
	return err
}

func (d *DatabaseClient) ListFavorites(userID uuid.UUID) ([]models.Listing, error) {
	rows, err := d.db.Query(`
		SELECT `+listingColumnsQualified+`
		FROM listings l
		JOIN favorites f ON f.listing_id = l.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		listings = append(listings, *listing)
	}

	return listings, rows.Err()
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
