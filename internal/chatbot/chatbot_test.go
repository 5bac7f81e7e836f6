package chatbot_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mycity/intake/internal/chatbot"
	"github.com/mycity/intake/pkg/models"
	"github.com/mycity/intake/pkg/repository/mock"
)

func TestRespond(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.ComplaintRepo.Stored = []models.Complaint{
		{ID: "abc", Description: "noise", Status: models.StatusResolved, Created: 1},
	}
	bot := chatbot.New(mocks.ComplaintRepo)
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		id      string
		want    string
	}{
		{name: "KnownID", message: "What is the STATUS of my complaint?", id: "abc", want: "Complaint abc is currently: Resolved"},
		{name: "UnknownID", message: "status", id: "zzz", want: "No complaint found with id zzz"},
		{name: "NoID", message: "status update please", want: "Please provide your complaint id"},
		{name: "NoIntent", message: "good morning", want: "I can tell you the status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bot.Respond(ctx, tt.message, tt.id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("reply %q does not contain %q", got, tt.want)
			}
		})
	}
}

type failingComplaintRepo struct{}

func (failingComplaintRepo) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	return errors.New("down")
}

func (failingComplaintRepo) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	return nil, errors.New("down")
}

func (failingComplaintRepo) ListComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	return nil, errors.New("down")
}

func (failingComplaintRepo) ListResolvedComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	return nil, errors.New("down")
}

func (failingComplaintRepo) UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus, updated int64) (*models.Complaint, error) {
	return nil, errors.New("down")
}

func TestRespondStoreError(t *testing.T) {
	bot := chatbot.New(failingComplaintRepo{})

	_, err := bot.Respond(context.Background(), "status", "abc")
	if err == nil {
		t.Fatalf("expected error on store failure")
	}
}
