package handlers

import (
	"net/http"

	ai "hustlr/services/intelligence"
	"hustlr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ModelsHandler reports the text-generation model chain.
type ModelsHandler struct {
	// Lister is nil when the local generator is in use.
	Lister ai.ModelLister
}

func NewModelsHandler(lister ai.ModelLister) *ModelsHandler {
	return &ModelsHandler{Lister: lister}
}

// ListModels returns the candidate chains. With ?remote=true it also lists
// the models the API key can reach.
func (h *ModelsHandler) ListModels(c *gin.Context) {
	if h.Lister == nil {
		c.JSON(http.StatusOK, gin.H{"mode": "local", "candidates": []string{}, "fast_candidates": []string{}})
		return
	}

	body := gin.H{
		"mode":            "remote",
		"candidates":      h.Lister.Candidates(false),
		"fast_candidates": h.Lister.Candidates(true),
	}
	if c.Query("remote") == "true" {
		available, err := h.Lister.ListModels(c.Request.Context())
		if err != nil {
			getLogger(c).Warn("failed to list remote models", zap.Error(err))
			utils.JSONError(c, http.StatusBadGateway, "Failed to list remote models", err.Error())
			return
		}
		body["available"] = available
	}
	c.JSON(http.StatusOK, body)
}
