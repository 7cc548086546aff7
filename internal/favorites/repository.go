package favorites

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/scx/internal/models"
)

// Repository handles favorite CRUD operations against a SQLite database.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository with the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert upserts a favorite record. A track favorited twice keeps the most
// recent snapshot and favorited-at timestamp.
func (r *Repository) Insert(record models.FavoriteRecord) error {
	if record.TrackID <= 0 {
		return fmt.Errorf("favorite requires a positive track id, got %d", record.TrackID)
	}
	if record.FavoritedAt.IsZero() {
		record.FavoritedAt = time.Now()
	}

	query := `
		INSERT OR REPLACE INTO favorites (
			track_id, title, duration_ms, genre, artwork_url, stream_url,
			permalink_url, created_at, user_id, username, favorited_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.TrackID,
		record.Title,
		record.Duration,
		nullable(record.Genre),
		nullable(record.ArtworkURL),
		nullable(record.StreamURL),
		record.PermalinkURL,
		record.CreatedAt,
		record.UserID,
		record.Username,
		record.FavoritedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}

	return nil
}

// Delete removes the favorite for the given track id. Deleting an absent
// favorite is not an error.
func (r *Repository) Delete(trackID int64) error {
	if _, err := r.db.Exec("DELETE FROM favorites WHERE track_id = ?", trackID); err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

// Exists reports whether the given track id is favorited.
func (r *Repository) Exists(trackID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM favorites WHERE track_id = ?)", trackID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// ListAll returns all favorites ordered by favorited-at descending.
func (r *Repository) ListAll() ([]models.FavoriteRecord, error) {
	query := `
		SELECT track_id, title, duration_ms, genre, artwork_url, stream_url,
			permalink_url, created_at, user_id, username, favorited_at
		FROM favorites
		ORDER BY favorited_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var records []models.FavoriteRecord
	for rows.Next() {
		record, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return records, nil
}

func scanFavorite(rows *sql.Rows) (models.FavoriteRecord, error) {
	var record models.FavoriteRecord
	var genre, artworkURL, streamURL sql.NullString
	var createdAt sql.NullTime

	err := rows.Scan(
		&record.TrackID,
		&record.Title,
		&record.Duration,
		&genre,
		&artworkURL,
		&streamURL,
		&record.PermalinkURL,
		&createdAt,
		&record.UserID,
		&record.Username,
		&record.FavoritedAt,
	)
	if err != nil {
		return record, fmt.Errorf("failed to scan favorite: %w", err)
	}

	record.Genre = genre.String
	record.ArtworkURL = artworkURL.String
	record.StreamURL = streamURL.String
	record.CreatedAt = createdAt.Time
	return record, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
