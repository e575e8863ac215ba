package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/ethantanner/spotify-coding-challenge/models"
	"github.com/ethantanner/spotify-coding-challenge/spotify"
	"github.com/ethantanner/spotify-coding-challenge/store"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 20
)

// catalog is the subset of the spotify client the handlers use. It allows the
// concrete client to be replaced in tests.
type catalog interface {
	FindTrackByISRC(ctx context.Context, isrc string) (spotify.Track, error)
}

var _ catalog = (*spotify.Client)(nil)

// TrackHandler serves the track routes.
type TrackHandler struct {
	store   *store.Tracks
	catalog catalog
}

func NewTrackHandler(s *store.Tracks, c catalog) *TrackHandler {
	return &TrackHandler{store: s, catalog: c}
}

// isrcPattern matches the standard recording-code shape: two-letter country,
// three-character registrant, two-digit year plus five-digit designation.
var isrcPattern = regexp.MustCompile(`^[A-Za-z]{2}[A-Za-z0-9]{3}[0-9]{7}$`)

func validISRC(fl validator.FieldLevel) bool {
	return isrcPattern.MatchString(fl.Field().String())
}

type isrcQuery struct {
	ISRC string `form:"isrc" binding:"required,isrc"`
}

type artistQuery struct {
	Artist string `form:"artist" binding:"required,max=200"`
	Limit  int    `form:"limit"`
	Page   int    `form:"page"`
}

type ingestRequest struct {
	ISRC string `json:"isrc" binding:"required,isrc"`
}

// Alive godoc
// @Summary Liveness probe
// @Description Reports that the service is up.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /alive [get]
func (h *TrackHandler) Alive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "I'm Alive"})
}

// GetByISRC godoc
// @Summary Get track details by ISRC
// @Description Retrieves track details from the local database based on the provided ISRC code.
// @Tags tracks
// @Produce json
// @Param isrc query string true "ISRC code of the track"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {string} string
// @Failure 404 {object} map[string]interface{}
// @Router /isrc [get]
func (h *TrackHandler) GetByISRC(c *gin.Context) {
	var q isrcQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.String(http.StatusBadRequest, "isrc must be two letters, three alphanumerics and seven digits")
		return
	}

	track, err := h.store.FindByISRC(c.Request.Context(), strings.ToUpper(q.ISRC))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"track": nil})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("looking up track")
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	c.JSON(http.StatusOK, gin.H{"track": track})
}

// GetByArtistName godoc
// @Summary Get tracks by artist name
// @Description Retrieves tracks from the local database whose artist names contain the given text.
// @Tags tracks
// @Produce json
// @Param artist query string true "Artist name to search for in tracks"
// @Param limit query int false "Tracks per page, 1-20" default(10)
// @Param page query int false "Page number, starting at 1" default(1)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {string} string
// @Router /artist [get]
func (h *TrackHandler) GetByArtistName(c *gin.Context) {
	var q artistQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.String(http.StatusBadRequest, "artist is required and must be at most 200 characters")
		return
	}
	limit := q.Limit
	if limit < 1 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	tracks, err := h.store.SearchByArtist(c.Request.Context(), q.Artist, page, limit)
	if err != nil {
		logrus.WithError(err).Error("searching tracks by artist")
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}
	if tracks == nil {
		tracks = []models.Track{}
	}

	c.JSON(http.StatusOK, gin.H{"tracks": tracks})
}

// FetchAndStore godoc
// @Summary Fetch and store track metadata
// @Description Fetches track metadata from Spotify based on ISRC and stores it in the local DB.
// @Tags tracks
// @Accept json
// @Produce plain
// @Param body body ingestRequest true "ISRC code of the track"
// @Success 200 {string} string
// @Failure 400 {string} string
// @Failure 404 {string} string
// @Router /track [post]
func (h *TrackHandler) FetchAndStore(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "body must be JSON with a valid isrc")
		return
	}
	isrc := strings.ToUpper(req.ISRC)

	found, err := h.catalog.FindTrackByISRC(c.Request.Context(), isrc)
	if errors.Is(err, spotify.ErrTrackNotFound) {
		c.String(http.StatusNotFound, "no catalog track carries isrc %s", isrc)
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("isrc", isrc).Error("fetching track metadata")
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	track, created, err := h.store.Create(c.Request.Context(), isrc, found.Title, found.ImageURI, found.Artists)
	if err != nil {
		logrus.WithError(err).WithField("isrc", isrc).Error("storing track metadata")
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}
	if !created {
		c.String(http.StatusOK, "track %s already saved", track.ISRC)
		return
	}
	c.String(http.StatusOK, "track %s saved", track.ISRC)
}
