package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorResponse is the error body shape: { "error": "Method Not Allowed" }
type errorResponse struct {
	Error string `json:"error"`
}

// JSONError sends an error response and stops the handler chain.
func JSONError(ctx *gin.Context, status int, msg string) {
	ctx.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// Convenience wrappers
func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, msg)
}

func MethodNotAllowed(ctx *gin.Context) {
	JSONError(ctx, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, msg)
}
