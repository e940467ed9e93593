package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/service"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/response"
)

// ContactHandler exposes the contact-form endpoint.
type ContactHandler struct {
	contact *service.ContactService
}

// NewContactHandler constructs ContactHandler.
func NewContactHandler(contact *service.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit godoc
// @Summary Send contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body service.ContactRequest true "Message payload"
// @Success 200 {object} response.Envelope
// @Router /email [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.contact.Submit(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Message sent successfully", nil)
}
