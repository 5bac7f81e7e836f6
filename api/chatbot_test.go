package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mycity/intake/api"
	"github.com/mycity/intake/internal/chatbot"
	"github.com/mycity/intake/pkg/models"
	"github.com/mycity/intake/pkg/repository/mock"
)

func TestChatbotHandler(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.ComplaintRepo.Stored = []models.Complaint{
		{ID: "c-42", Description: "pothole", Status: models.StatusInProgress, Created: 1000},
	}
	handler := api.NewChatbotHandler(chatbot.New(mocks.ComplaintRepo))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantReply  string
	}{
		{
			name:       "InvalidJSON",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "EmptyMessage",
			body:       `{"message":""}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "StatusWithKnownID",
			body:       `{"message":"what is the status of my complaint?","id":"c-42"}`,
			wantStatus: http.StatusOK,
			wantReply:  "In Progress",
		},
		{
			name:       "StatusWithUnknownID",
			body:       `{"message":"status please","id":"nope"}`,
			wantStatus: http.StatusOK,
			wantReply:  "No complaint found",
		},
		{
			name:       "StatusWithoutID",
			body:       `{"message":"what is my status?"}`,
			wantStatus: http.StatusOK,
			wantReply:  "id",
		},
		{
			name:       "UnrecognizedMessage",
			body:       `{"message":"hello there"}`,
			wantStatus: http.StatusOK,
			wantReply:  "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Respond(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d got %d body=%s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantReply != "" {
				var res struct {
					Reply string `json:"reply"`
				}
				if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if !strings.Contains(res.Reply, tt.wantReply) {
					t.Fatalf("reply %q does not mention %q", res.Reply, tt.wantReply)
				}
			}
		})
	}
}
