package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

// WebhookNotifier posts booking outcome notifications to the external
// delivery endpoint and checks its JSON acknowledgment. It never
// retries by itself; the dispatch worker owns that policy.
type WebhookNotifier struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *zerolog.Logger
}

type notificationRequest struct {
	BookingID  string `json:"bookingId"`
	Status     string `json:"status"`
	AdminNotes string `json:"adminNotes,omitempty"`
}

type notificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewWebhookNotifier(endpoint, token string, timeout time.Duration, logger *zerolog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, booking *models.Booking, status, adminNotes string) error {
	body, err := json.Marshal(notificationRequest{
		BookingID:  booking.ID,
		Status:     status,
		AdminNotes: adminNotes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	var ack notificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("failed to decode notification ack: %w", err)
	}
	if !ack.Success {
		return fmt.Errorf("notification endpoint reported failure: %s", ack.Error)
	}

	n.logger.Debug().
		Str("booking_id", booking.ID).
		Str("status", status).
		Msg(Message(booking, status, adminNotes))

	return nil
}

// Message renders the human-readable summary of a transition: room,
// requester, interval and any admin notes.
func Message(booking *models.Booking, status, adminNotes string) string {
	msg := fmt.Sprintf("booking for %s by %s (%s - %s) was %s",
		booking.RoomName,
		booking.UserName,
		booking.StartTime.Format(time.RFC3339),
		booking.EndTime.Format(time.RFC3339),
		status,
	)
	if adminNotes != "" {
		msg += fmt.Sprintf("; admin notes: %s", adminNotes)
	}
	return msg
}
