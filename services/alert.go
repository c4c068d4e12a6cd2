package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"auctionwatch/models"
	"auctionwatch/storage"
)

// AlertMessagePrefix starts every alert message; the first 50 characters
// of the listing title follow.
const AlertMessagePrefix = "새로운 경매 물건이 발견되었습니다: "

const alertTitleRunes = 50

// AlertService writes at most one alert per (user, listing) pair.
type AlertService struct {
	store    storage.Store
	notifier *NotificationService
}

func NewAlertService(store storage.Store, notifier *NotificationService) *AlertService {
	return &AlertService{store: store, notifier: notifier}
}

// CreateForMatch records an alert for one matched (user, listing) pair.
// Returns false without error when an alert for the pair already exists,
// so re-running matching against the same listing stays idempotent.
func (s *AlertService) CreateForMatch(ctx context.Context, userID string, listing *models.Listing) (bool, error) {
	exists, err := s.store.HasAlert(ctx, userID, listing.ID)
	if err != nil {
		return false, fmt.Errorf("check existing alert: %w", err)
	}
	if exists {
		return false, nil
	}

	alert := &models.Alert{
		UserID:    userID,
		ListingID: listing.ID,
		Message:   BuildAlertMessage(listing.Title),
		SentAt:    time.Now(),
	}
	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return false, fmt.Errorf("create alert: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, userID, alert.Message, models.ChannelDatabase); err != nil {
			log.Printf("alert: notification dispatch failed for user %s: %v", userID, err)
		}
	}

	return true, nil
}

// BuildAlertMessage renders the alert text: the fixed prefix, the first 50
// runes of the title, and a trailing ellipsis.
func BuildAlertMessage(title string) string {
	runes := []rune(title)
	if len(runes) > alertTitleRunes {
		runes = runes[:alertTitleRunes]
	}
	return AlertMessagePrefix + string(runes) + "..."
}
