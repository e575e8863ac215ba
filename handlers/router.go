package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter wires the track routes, the isrc validation rule and the
// request middleware into a gin engine ready to serve.
func SetupRouter(h *TrackHandler) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("isrc", validISRC)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(), Metrics())

	router.GET("/alive", h.Alive)
	router.GET("/isrc", h.GetByISRC)
	router.GET("/artist", h.GetByArtistName)
	router.POST("/track", h.FetchAndStore)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
