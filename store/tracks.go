// Package store persists track metadata in the relational database.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ethantanner/spotify-coding-challenge/models"
)

// ErrNotFound is returned when no row matches a lookup.
var ErrNotFound = errors.New("track not found")

// Tracks provides access to the cached track rows.
type Tracks struct {
	db *gorm.DB
}

func NewTracks(db *gorm.DB) *Tracks {
	return &Tracks{db: db}
}

// FindByISRC returns the cached track carrying the given code, artists
// included, or ErrNotFound.
func (s *Tracks) FindByISRC(ctx context.Context, isrc string) (models.Track, error) {
	var track models.Track
	err := s.db.WithContext(ctx).
		Preload("Artists").
		Where("isrc = ?", isrc).
		First(&track).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Track{}, ErrNotFound
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("loading track %s: %w", isrc, err)
	}
	return track, nil
}

// SearchByArtist returns tracks credited to any artist whose name contains
// name, case-insensitively. Results are ordered by row id so pages are
// stable; page starts at 1. No match yields an empty slice.
func (s *Tracks) SearchByArtist(ctx context.Context, name string, page, limit int) ([]models.Track, error) {
	var tracks []models.Track
	err := s.db.WithContext(ctx).
		Select("tracks.*").
		Preload("Artists").
		Joins("JOIN track_artists ON track_artists.track_id = tracks.id").
		Joins("JOIN artists ON artists.id = track_artists.artist_id").
		Where("LOWER(artists.name) LIKE ?", "%"+strings.ToLower(name)+"%").
		Group("tracks.id").
		Order("tracks.id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("searching tracks by artist: %w", err)
	}
	return tracks, nil
}

// Create stores a newly fetched track together with its artist credits.
// Artists are matched by exact name and reused when already present. When a
// concurrent request has saved the same code first, the existing row is
// returned with created == false; stored fields are never overwritten.
func (s *Tracks) Create(ctx context.Context, isrc, title, imageURI string, artistNames []string) (models.Track, bool, error) {
	track := models.Track{ISRC: isrc, Title: title, ImageURI: imageURI}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range artistNames {
			var artist models.Artist
			err := tx.FirstOrCreate(&artist, models.Artist{Name: name}).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// lost a race with a concurrent ingest; the row exists now
				err = tx.First(&artist, "name = ?", name).Error
			}
			if err != nil {
				return fmt.Errorf("reconciling artist %q: %w", name, err)
			}
			track.Artists = append(track.Artists, &artist)
		}
		return tx.Create(&track).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, err := s.FindByISRC(ctx, isrc)
		if err != nil {
			return models.Track{}, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return models.Track{}, false, fmt.Errorf("saving track %s: %w", isrc, err)
	}
	return track, true, nil
}
