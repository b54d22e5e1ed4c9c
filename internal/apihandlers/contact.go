package apihandlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"contactform/pkg/categorizer"
)

const (
	msgFieldsRequired = "Name, email, and message fields are required."
	msgMissingAPIKey  = "Server configuration error: Gemini API key missing."
	msgInternalPrefix = "Internal server error: "
	msgReceived       = "Message received successfully!"
)

// ContactRequest defines the expected JSON body for a contact submission.
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ContactResponse is returned once the message has been categorized.
type ContactResponse struct {
	Message  string               `json:"message"`
	Category categorizer.Category `json:"category"`
}

type ContactHandler struct {
	Categorizer categorizer.ContentCategorizer
}

func NewContactHandler(c categorizer.ContentCategorizer) *ContactHandler {
	return &ContactHandler{Categorizer: c}
}

// SubmitContactHandler validates a submission, categorizes its message and
// replies with the category. It is mounted for every method so that non-POST
// requests get a JSON 405.
func (h *ContactHandler) SubmitContactHandler(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		MethodNotAllowed(c)
		return
	}

	logger := requestLogger(c)

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Debugf("Rejected contact submission: %v", err)
		BadRequest(c, msgFieldsRequired)
		return
	}
	submission := categorizer.Submission{Name: req.Name, Email: req.Email, Message: req.Message}
	if !submission.Valid() {
		BadRequest(c, msgFieldsRequired)
		return
	}

	result, err := h.Categorizer.Categorize(c.Request.Context(), categorizer.CategorizationRequest{
		Message: submission.Message,
	})
	if err != nil {
		if errors.Is(err, categorizer.ErrMissingAPIKey) {
			logger.Error("Gemini API key is not configured")
			Internal(c, msgMissingAPIKey)
			return
		}
		logger.WithField("attempts", result.Attempts).Errorf("Failed to categorize contact message: %+v", err)
		Internal(c, msgInternalPrefix+err.Error())
		return
	}

	entry := logger.WithFields(log.Fields{
		"category": result.Category,
		"attempts": result.Attempts,
	})
	if result.Category.Known() {
		entry.Info("Contact message categorized")
	} else {
		entry.Warn("Contact message categorized outside the known label set")
	}

	c.JSON(http.StatusOK, ContactResponse{
		Message:  msgReceived,
		Category: result.Category,
	})
}

// HealthHandler reports liveness.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
