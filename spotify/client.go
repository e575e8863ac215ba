package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
)

// ErrTrackNotFound is returned when the catalog has no track for a query.
var ErrTrackNotFound = errors.New("track not found")

// searcher defines the subset of the spotify.Client used by this package.
// It allows the concrete client to be replaced in tests.
type searcher interface {
	Search(query string, t spotify.SearchType) (*spotify.SearchResult, error)
}

// Track carries the slice of catalog metadata the service stores.
type Track struct {
	Title      string
	ImageURI   string
	Popularity int
	Artists    []string
}

// Client looks up track metadata in the Spotify catalog.
type Client struct {
	client searcher
}

// NewClient returns a Client whose requests authenticate through ts. The
// token is injected at the transport level, so the wrapped client never
// touches credentials itself.
func NewClient(ctx context.Context, ts oauth2.TokenSource) *Client {
	c := spotify.NewClient(oauth2.NewClient(ctx, ts))
	return &Client{client: &c}
}

// FindTrackByISRC returns the metadata of the most popular catalog track
// carrying the given ISRC. ErrTrackNotFound is returned when the catalog has
// no match. The underlying client does not accept a context, but we honour
// the provided one by checking for cancellation before the call.
func (c *Client) FindTrackByISRC(ctx context.Context, isrc string) (Track, error) {
	if err := ctx.Err(); err != nil {
		return Track{}, err
	}
	results, err := c.client.Search(fmt.Sprintf("isrc:%s", isrc), spotify.SearchTypeTrack)
	if err != nil {
		return Track{}, fmt.Errorf("searching catalog: %w", err)
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return Track{}, ErrTrackNotFound
	}

	// Several releases can share one ISRC; keep the most popular and let the
	// first seen win ties.
	tracks := results.Tracks.Tracks
	best := tracks[0]
	for _, t := range tracks[1:] {
		if t.Popularity > best.Popularity {
			best = t
		}
	}
	return fromFullTrack(best), nil
}

func fromFullTrack(t spotify.FullTrack) Track {
	track := Track{
		Title:      t.Name,
		Popularity: t.Popularity,
	}
	if len(t.Album.Images) > 0 {
		track.ImageURI = t.Album.Images[0].URL
	}
	for _, artist := range t.Artists {
		track.Artists = append(track.Artists, artist.Name)
	}
	return track
}
