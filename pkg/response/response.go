package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

// The frontend pattern-matches on `success`; field names here are a wire
// contract and must not change.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       interface{}        `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Error      string             `json:"error,omitempty"`
}

var includeErrorDetail bool

// IncludeErrorDetail toggles raw error strings on 5xx envelopes. Enabled in
// development only.
func IncludeErrorDetail(enabled bool) {
	includeErrorDetail = enabled
}

// JSON sends a success envelope with optional pagination metadata.
func JSON(c *gin.Context, status int, message string, data interface{}, pagination *models.Pagination) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// OK responds with HTTP 200.
func OK(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusOK, message, data, nil)
}

// Paginated responds with HTTP 200 and pagination metadata.
func Paginated(c *gin.Context, message string, data interface{}, pagination *models.Pagination) {
	JSON(c, http.StatusOK, message, data, pagination)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, message, data, nil)
}

// Error sends an error envelope converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	envelope := Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Details,
	}
	if includeErrorDetail && appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
		envelope.Error = appErr.Err.Error()
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, envelope)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
