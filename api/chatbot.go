package api

import (
	"encoding/json"
	"net/http"

	"github.com/mycity/intake/internal/chatbot"
)

type ChatbotHandler struct {
	bot *chatbot.Responder
}

func NewChatbotHandler(bot *chatbot.Responder) *ChatbotHandler {
	return &ChatbotHandler{bot: bot}
}

type chatbotRequest struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type chatbotResponse struct {
	Reply string `json:"reply"`
}

func (h *ChatbotHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req chatbotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		writeError(w, "message required", http.StatusBadRequest)
		return
	}

	reply, err := h.bot.Respond(r.Context(), req.Message, req.ID)
	if err != nil {
		logger.Error("chatbot lookup", "err", err)
		writeError(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, chatbotResponse{Reply: reply}, http.StatusOK)
}
