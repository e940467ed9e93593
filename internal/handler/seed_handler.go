package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/service"
	"github.com/agape-academy/academy-api/pkg/response"
)

// SeedHandler exposes the dev seed endpoint. Registered outside production
// only.
type SeedHandler struct {
	seed *service.SeedService
}

// NewSeedHandler constructs SeedHandler.
func NewSeedHandler(seed *service.SeedService) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Run godoc
// @Summary Seed sample data (non-production)
// @Tags Dev
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /dev/seed [post]
func (h *SeedHandler) Run(c *gin.Context) {
	result, err := h.seed.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Seed data created successfully", result)
}
