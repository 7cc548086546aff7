package models

import (
	"fmt"
	"time"
)

// Track represents a single track on the service.
//
// Two tracks are equal iff their ids match; see [Track.Equal]. Optional count
// fields are pointers so that "absent" and "zero" stay distinguishable.
type Track struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Duration      int       `json:"duration"` // milliseconds
	Genre         string    `json:"genre,omitempty"`
	ArtworkURL    string    `json:"artwork_url,omitempty"`
	StreamURL     string    `json:"stream_url,omitempty"`
	PermalinkURL  string    `json:"permalink_url"`
	PlaybackCount *int64    `json:"playback_count,omitempty"`
	LikeCount     *int64    `json:"favoritings_count,omitempty"`
	CommentCount  *int64    `json:"comment_count,omitempty"`
	Downloadable  bool      `json:"downloadable"`
	Streamable    bool      `json:"streamable"`
	CreatedAt     time.Time `json:"created_at"`
	User          User      `json:"user"`
}

// Equal reports whether two tracks share the same identity.
func (t Track) Equal(other Track) bool {
	return t.ID == other.ID
}

// Validate checks the invariants the rest of the system relies on.
func (t Track) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("track id must be positive, got %d", t.ID)
	}
	if t.Title == "" {
		return fmt.Errorf("track %d has no title", t.ID)
	}
	if t.Duration < 0 {
		return fmt.Errorf("track %d has negative duration %d", t.ID, t.Duration)
	}
	if t.PermalinkURL == "" {
		return fmt.Errorf("track %d has no permalink URL", t.ID)
	}
	return nil
}

// DurationFormatted returns the track duration as m:ss.
func (t Track) DurationFormatted() string {
	totalSeconds := t.Duration / 1000
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// DurationSeconds returns the track duration in seconds.
func (t Track) DurationSeconds() float64 {
	return float64(t.Duration) / 1000.0
}

// User represents the profile of a track owner.
type User struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	PermalinkURL    string `json:"permalink_url"`
	FollowersCount  *int64 `json:"followers_count,omitempty"`
	FollowingsCount *int64 `json:"followings_count,omitempty"`
	TracksCount     *int64 `json:"track_count,omitempty"`
	PlaylistCount   *int64 `json:"playlist_count,omitempty"`
	Description     string `json:"description,omitempty"`
	Country         string `json:"country,omitempty"`
	City            string `json:"city,omitempty"`
	Website         string `json:"website,omitempty"`
	WebsiteTitle    string `json:"website_title,omitempty"`
	Verified        bool   `json:"verified"`
}

// Equal reports whether two users share the same identity.
func (u User) Equal(other User) bool {
	return u.ID == other.ID
}

// FavoriteRecord is a denormalized snapshot of a track kept in the local
// favorites store, keyed by track id.
type FavoriteRecord struct {
	TrackID      int64
	Title        string
	Duration     int // milliseconds
	Genre        string
	ArtworkURL   string
	StreamURL    string
	PermalinkURL string
	CreatedAt    time.Time
	UserID       int64
	Username     string
	FavoritedAt  time.Time
}

// NewFavoriteRecord snapshots the identity-relevant fields of a track.
func NewFavoriteRecord(track Track, favoritedAt time.Time) FavoriteRecord {
	return FavoriteRecord{
		TrackID:      track.ID,
		Title:        track.Title,
		Duration:     track.Duration,
		Genre:        track.Genre,
		ArtworkURL:   track.ArtworkURL,
		StreamURL:    track.StreamURL,
		PermalinkURL: track.PermalinkURL,
		CreatedAt:    track.CreatedAt,
		UserID:       track.User.ID,
		Username:     track.User.Username,
		FavoritedAt:  favoritedAt,
	}
}

// Track rebuilds a Track value from the snapshot. Fields the snapshot does not
// carry come back zeroed; identity is preserved.
func (r FavoriteRecord) Track() Track {
	return Track{
		ID:           r.TrackID,
		Title:        r.Title,
		Duration:     r.Duration,
		Genre:        r.Genre,
		ArtworkURL:   r.ArtworkURL,
		StreamURL:    r.StreamURL,
		PermalinkURL: r.PermalinkURL,
		Streamable:   r.StreamURL != "",
		CreatedAt:    r.CreatedAt,
		User:         User{ID: r.UserID, Username: r.Username},
	}
}
