package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"auctionwatch/models"
)

// NotificationService delivers alert messages over a channel. Only the
// database channel is functionally complete: the alert row written by the
// AlertService is the delivery. Email and webhook are reserved for future
// backends and log a no-op.
type NotificationService struct {
	client *http.Client
}

func NewNotificationService(client *http.Client) *NotificationService {
	return &NotificationService{client: client}
}

func (n *NotificationService) Send(ctx context.Context, userID, message, channel string) error {
	switch channel {
	case models.ChannelDatabase:
		return nil
	case models.ChannelEmail:
		// TODO: SMTP delivery once a mail provider is configured
		log.Printf("notification: email channel not implemented, user=%s", userID)
		return nil
	case models.ChannelWebhook:
		// TODO: POST to per-user webhook URLs once they are stored
		log.Printf("notification: webhook channel not implemented, user=%s", userID)
		return nil
	default:
		return fmt.Errorf("unsupported notification channel: %s", channel)
	}
}

// Notification is one pending delivery for SendBulk.
type Notification struct {
	UserID  string
	Message string
	Channel string
}

// BulkResult summarizes a SendBulk pass.
type BulkResult struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

func (n *NotificationService) SendBulk(ctx context.Context, notifications []Notification) BulkResult {
	result := BulkResult{Total: len(notifications)}
	for _, notif := range notifications {
		channel := notif.Channel
		if channel == "" {
			channel = models.ChannelDatabase
		}
		if err := n.Send(ctx, notif.UserID, notif.Message, channel); err != nil {
			log.Printf("notification: send failed for user %s: %v", notif.UserID, err)
			result.Failed++
			continue
		}
		result.Success++
	}
	return result
}
