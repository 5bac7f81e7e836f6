package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/mycity/intake/internal/config"
)

// Sender delivers a status-change notice to a complaint submitter.
// Delivery is best-effort; callers must never let a send failure reach the
// submitting request.
type Sender interface {
	SendStatusUpdate(ctx context.Context, toEmail, complaintID, status, description string) error
}

type LogSender struct {
	logger *slog.Logger
}

func (s LogSender) SendStatusUpdate(ctx context.Context, toEmail, complaintID, status, description string) error {
	_ = ctx
	s.logger.Info("status notification",
		slog.String("to", toEmail),
		slog.String("complaint_id", complaintID),
		slog.String("status", status),
	)
	return nil
}

type SMTPSender struct {
	host string
	port int
	from string
}

func NewSender(cfg config.NotifierConfig, logger *slog.Logger) Sender {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Sender {
	case "smtp":
		return SMTPSender{
			host: cfg.SMTPHost,
			port: cfg.SMTPPort,
			from: cfg.From,
		}
	default:
		return LogSender{logger: logger}
	}
}

func (s SMTPSender) SendStatusUpdate(ctx context.Context, toEmail, complaintID, status, description string) error {
	_ = ctx
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	body := fmt.Sprintf("Subject: Complaint %s status: %s\r\n\r\nYour complaint status has been updated to: %s\r\n\r\nDescription: %s\r\n",
		complaintID, status, status, description)
	return smtp.SendMail(addr, nil, s.from, []string{toEmail}, []byte(body))
}
