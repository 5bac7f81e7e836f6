package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mycity/intake/pkg/repository"
)

// Responder answers complaint status queries. It is a single-intent keyword
// matcher, not a dialogue engine: the only recognized intent is "status".
type Responder struct {
	complaints repository.ComplaintRepo
}

func New(complaints repository.ComplaintRepo) *Responder {
	return &Responder{complaints: complaints}
}

const fallbackReply = `I can tell you the status of a complaint. Try: "What is the status of my complaint?" and include your complaint id.`

// Respond returns the reply text for a message. An error is returned only on
// store failure; unknown ids and unmatched messages produce normal replies.
func (r *Responder) Respond(ctx context.Context, message, id string) (string, error) {
	lower := strings.ToLower(message)
	if !strings.Contains(lower, "status") {
		return fallbackReply, nil
	}

	if id == "" {
		return `Please provide your complaint id. Example: { "id": "<your-id>", "message": "status" }`, nil
	}

	c, err := r.complaints.GetComplaint(ctx, id)
	if err != nil {
		return "", fmt.Errorf("look up complaint %s: %w", id, err)
	}
	if c == nil {
		return fmt.Sprintf("No complaint found with id %s", id), nil
	}

	return fmt.Sprintf("Complaint %s is currently: %s", id, c.Status), nil
}
