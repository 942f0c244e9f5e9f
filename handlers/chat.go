package handlers

import (
	"context"
	"net/http"

	"hustlr/models"
	"hustlr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MessageHandler runs one conversational turn.
type MessageHandler interface {
	HandleMessage(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
}

type ChatHandler struct {
	Assistant MessageHandler
}

func NewChatHandler(assistant MessageHandler) *ChatHandler {
	return &ChatHandler{Assistant: assistant}
}

// HandleChat accepts {sender, message, lat?, lng?, fast?, session_id?} and
// answers with the single reply of the turn.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	logger := getLogger(c)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid location", "lat and lng must be sent together")
		return
	}

	resp, err := h.Assistant.HandleMessage(c.Request.Context(), req)
	if err != nil {
		logger.Debug("chat request rejected", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid message", err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}
