package handlers

import (
	"context"
	"net/http"

	"cargodesk/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

// Conversation answers one chat message.
type Conversation interface {
	Handle(ctx context.Context, chatID, text string) (string, error)
}

type BotHandler struct {
	flow Conversation
	log  *logger.Logger
}

func NewBotHandler(flow Conversation) *BotHandler {
	return &BotHandler{flow: flow, log: logger.New("bot_handler")}
}

type BotUpdate struct {
	ChatID string `json:"chat_id" validate:"required"`
	Text   string `json:"text"`
}

type BotReply struct {
	Reply string `json:"reply"`
}

// Updates feeds a chat message into the conversation flow
// @Summary Bot webhook
// @Description Receives a chat message signed with X-Bot-Signature and returns the reply text.
// @Tags bot
// @Accept json
// @Produce json
// @Param X-Bot-Signature header string true "hex HMAC-SHA256 of the body"
// @Param request body BotUpdate true "Message"
// @Success 200 {object} BotReply
// @Failure 401 {object} response.Envelope "Bad signature"
// @Router /bot/updates [post]
func (h *BotHandler) Updates(c echo.Context) error {
	var req BotUpdate
	if err := bind(c, &req); err != nil {
		return err
	}

	reply, err := h.flow.Handle(c.Request().Context(), req.ChatID, req.Text)
	if err != nil {
		return h.log.Error("Failed to handle message from chat %s", err, req.ChatID)
	}
	return c.JSON(http.StatusOK, BotReply{Reply: reply})
}
