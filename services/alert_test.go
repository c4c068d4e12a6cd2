package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"auctionwatch/models"
	"auctionwatch/storage"
)

func newAlertService(store storage.Store) *AlertService {
	return NewAlertService(store, NewNotificationService(&http.Client{}))
}

func TestCreateForMatch_Idempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAlertService(store)
	ctx := context.Background()

	listing := &models.Listing{Title: "서울 송파구 아파트", URL: "http://example.com/1"}
	if err := store.CreateListing(ctx, listing); err != nil {
		t.Fatalf("create listing: %v", err)
	}

	created, err := svc.CreateForMatch(ctx, "user-1", listing)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if !created {
		t.Fatal("expected first alert to be created")
	}

	created, err = svc.CreateForMatch(ctx, "user-1", listing)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatal("expected second alert for the same pair to be skipped")
	}

	alerts, _ := store.ListAlertsByUser(ctx, "user-1", 10)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
}

func TestCreateForMatch_DistinctPairs(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newAlertService(store)
	ctx := context.Background()

	first := &models.Listing{Title: "물건 1", URL: "http://example.com/1"}
	second := &models.Listing{Title: "물건 2", URL: "http://example.com/2"}
	store.CreateListing(ctx, first)
	store.CreateListing(ctx, second)

	for _, l := range []*models.Listing{first, second} {
		if created, err := svc.CreateForMatch(ctx, "user-1", l); err != nil || !created {
			t.Fatalf("expected alert for listing %d, got created=%v err=%v", l.ID, created, err)
		}
	}
	if created, err := svc.CreateForMatch(ctx, "user-2", first); err != nil || !created {
		t.Fatalf("expected alert for second user, got created=%v err=%v", created, err)
	}

	alerts, _ := store.ListAlertsByUser(ctx, "user-1", 10)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts for user-1, got %d", len(alerts))
	}
}

func TestBuildAlertMessage(t *testing.T) {
	msg := BuildAlertMessage("송파구 아파트")
	if msg != AlertMessagePrefix+"송파구 아파트..." {
		t.Fatalf("unexpected message %q", msg)
	}

	long := strings.Repeat("가", 80)
	msg = BuildAlertMessage(long)
	if !strings.HasPrefix(msg, AlertMessagePrefix) {
		t.Fatalf("missing prefix in %q", msg)
	}
	body := strings.TrimPrefix(msg, AlertMessagePrefix)
	if !strings.HasSuffix(body, "...") {
		t.Fatalf("missing ellipsis in %q", body)
	}
	if got := len([]rune(strings.TrimSuffix(body, "..."))); got != 50 {
		t.Fatalf("expected 50 title runes, got %d", got)
	}
}
