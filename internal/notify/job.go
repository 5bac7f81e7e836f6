package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mycity/intake/internal/jobs"
)

// JobTypeStatusChange is the queue type for status-change notifications.
const JobTypeStatusChange = "notify.status_change"

// StatusChangePayload is the job payload enqueued on a status transition.
type StatusChangePayload struct {
	ComplaintID string `json:"complaint_id"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// StatusChangeHandler adapts a Sender into a job handler for the worker pool.
func StatusChangeHandler(s Sender) jobs.Handler {
	return func(ctx context.Context, j *jobs.Job) error {
		var p StatusChangePayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return fmt.Errorf("decode status change payload: %w", err)
		}
		if p.Email == "" {
			// nothing to deliver; treat as done
			return nil
		}
		return s.SendStatusUpdate(ctx, p.Email, p.ComplaintID, p.Status, p.Description)
	}
}
