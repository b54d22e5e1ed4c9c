package apihandlers

import (
	"github.com/gin-gonic/gin"
)

// ContactPaths are the routes the contact handler is mounted on.
var ContactPaths = []string{
	"/api/contact",
	"/.netlify/functions/contact",
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(h *ContactHandler) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), RequestLogger(), gin.Recovery())

	// Any only covers the standard methods; other verbs land here.
	router.HandleMethodNotAllowed = true
	router.NoMethod(MethodNotAllowed)

	for _, p := range ContactPaths {
		router.Any(p, h.SubmitContactHandler)
	}

	router.GET("/health", HealthHandler)
	return router
}
