package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ethantanner/spotify-coding-challenge/models"
)

// newTestStore opens a throwaway SQLite database with the production schema.
func newTestStore(t *testing.T) *Tracks {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracks.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Track{}, &models.Artist{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return NewTracks(db)
}

func TestCreateAndFindByISRC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, created, err := s.Create(ctx, "USEE10001992", "Bohemian Like You", "https://img/bohemian", []string{"The Dandy Warhols"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !created {
		t.Fatal("expected first ingest to report a new row")
	}
	if saved.ID == 0 {
		t.Fatal("expected a database id on the created track")
	}

	track, err := s.FindByISRC(ctx, "USEE10001992")
	if err != nil {
		t.Fatalf("FindByISRC returned error: %v", err)
	}
	if track.Title != "Bohemian Like You" || track.ImageURI != "https://img/bohemian" {
		t.Errorf("unexpected track fields: %+v", track)
	}
	if len(track.Artists) != 1 || track.Artists[0].Name != "The Dandy Warhols" {
		t.Errorf("expected one credited artist, got %+v", track.Artists)
	}
}

func TestFindByISRCNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.FindByISRC(context.Background(), "ZZZZZ9999999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRepeatIngestKeepsExistingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, created, err := s.Create(ctx, "GBDUW0000059", "Original Title", "https://img/one", []string{"Some Band"})
	if err != nil || !created {
		t.Fatalf("first Create: created=%v err=%v", created, err)
	}

	// A later fetch may carry different metadata; the stored row must not move.
	second, created, err := s.Create(ctx, "GBDUW0000059", "Retitled", "https://img/two", []string{"Some Band", "New Credit"})
	if err != nil {
		t.Fatalf("repeat Create returned error: %v", err)
	}
	if created {
		t.Fatal("expected repeat ingest to report created=false")
	}
	if second.ID != first.ID {
		t.Errorf("expected the original row id %d, got %d", first.ID, second.ID)
	}
	if second.Title != "Original Title" {
		t.Errorf("expected stored fields untouched, got title %q", second.Title)
	}
	if len(second.Artists) != 1 {
		t.Errorf("expected the original artist credits, got %+v", second.Artists)
	}
}

func TestCreateReusesArtistsAcrossTracks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	one, _, err := s.Create(ctx, "USRC11700001", "Solo Cut", "", []string{"Q-Tip", "Phife Dawg"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	two, _, err := s.Create(ctx, "USRC11700002", "Joint Cut", "", []string{"Q-Tip", "Busta Rhymes"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	var count int64
	if err := s.db.Model(&models.Artist{}).Count(&count).Error; err != nil {
		t.Fatalf("counting artists: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 distinct artists, got %d", count)
	}

	ids := map[string]uint{}
	for _, a := range one.Artists {
		ids[a.Name] = a.ID
	}
	for _, a := range two.Artists {
		if a.Name == "Q-Tip" && a.ID != ids["Q-Tip"] {
			t.Errorf("expected Q-Tip reused with id %d, got %d", ids["Q-Tip"], a.ID)
		}
	}
}

func TestSearchByArtist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []struct {
		isrc   string
		title  string
		artist string
	}{
		{"USRO10000001", "Paradise City", "Guns N' Roses"},
		{"ESRO12100001", "Despechá", "Rosalía"},
		{"GBQUE6600001", "Bohemian Rhapsody", "Queen"},
	}
	for _, row := range seed {
		if _, _, err := s.Create(ctx, row.isrc, row.title, "", []string{row.artist}); err != nil {
			t.Fatalf("seeding %s: %v", row.isrc, err)
		}
	}

	cases := []struct {
		name   string
		search string
		want   []string
	}{
		{"case-insensitive match", "ROSES", []string{"Paradise City"}},
		{"substring match", "ros", []string{"Paradise City", "Despechá"}},
		{"no match", "Nobody", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tracks, err := s.SearchByArtist(ctx, tc.search, 1, 10)
			if err != nil {
				t.Fatalf("SearchByArtist returned error: %v", err)
			}
			if len(tracks) != len(tc.want) {
				t.Fatalf("expected %d tracks, got %d", len(tc.want), len(tracks))
			}
			for i, title := range tc.want {
				if tracks[i].Title != title {
					t.Errorf("expected track %d to be %q, got %q", i, title, tracks[i].Title)
				}
			}
		})
	}
}

func TestSearchByArtistPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	codes := []string{"AUUM72000001", "AUUM72000002", "AUUM72000003"}
	for i, code := range codes {
		if _, _, err := s.Create(ctx, code, codes[i], "", []string{"Tame Impala"}); err != nil {
			t.Fatalf("seeding %s: %v", code, err)
		}
	}

	pageOne, err := s.SearchByArtist(ctx, "tame", 1, 2)
	if err != nil {
		t.Fatalf("SearchByArtist page 1: %v", err)
	}
	pageTwo, err := s.SearchByArtist(ctx, "tame", 2, 2)
	if err != nil {
		t.Fatalf("SearchByArtist page 2: %v", err)
	}

	if len(pageOne) != 2 || len(pageTwo) != 1 {
		t.Fatalf("expected pages of 2 and 1 tracks, got %d and %d", len(pageOne), len(pageTwo))
	}
	if pageOne[0].ID >= pageOne[1].ID || pageOne[1].ID >= pageTwo[0].ID {
		t.Error("expected stable id ordering across pages")
	}
}
