package services

import (
	"context"
	"reflect"
	"testing"

	"auctionwatch/models"
	"auctionwatch/storage"
)

func seedKeywords(t *testing.T, store storage.Store, pairs [][2]string) {
	t.Helper()
	ctx := context.Background()
	for _, p := range pairs {
		if err := store.CreateKeyword(ctx, &models.Keyword{UserID: p[0], Keyword: p[1]}); err != nil {
			t.Fatalf("seed keyword: %v", err)
		}
	}
}

func TestMatch_TitleSubstring(t *testing.T) {
	store := storage.NewMemoryStore()
	seedKeywords(t, store, [][2]string{
		{"user-1", "송파구"},
		{"user-2", "강남구"},
	})

	index, err := NewMatchService(store).BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	users := index.Match("서울특별시 송파구 잠실동 아파트", nil)
	if !reflect.DeepEqual(users, []string{"user-1"}) {
		t.Fatalf("expected [user-1], got %v", users)
	}
}

func TestMatch_CaseInsensitiveTitle(t *testing.T) {
	store := storage.NewMemoryStore()
	seedKeywords(t, store, [][2]string{{"user-1", "APT"}})

	index, err := NewMatchService(store).BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	if users := index.Match("Jamsil apt complex unit 1503", nil); !reflect.DeepEqual(users, []string{"user-1"}) {
		t.Fatalf("expected case-insensitive title match, got %v", users)
	}
}

func TestMatch_TagMembership(t *testing.T) {
	store := storage.NewMemoryStore()
	seedKeywords(t, store, [][2]string{{"user-1", "아파트"}})

	index, err := NewMatchService(store).BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	// Title does not contain the keyword; only the tag set does.
	users := index.Match("잠실동 123-4 공동주거시설", []string{"아파트"})
	if !reflect.DeepEqual(users, []string{"user-1"}) {
		t.Fatalf("expected tag-set match, got %v", users)
	}
}

func TestMatch_DeduplicatesUsers(t *testing.T) {
	store := storage.NewMemoryStore()
	// Same user registered the same keyword twice, and a second keyword
	// that matches the same listing through both paths.
	seedKeywords(t, store, [][2]string{
		{"user-1", "송파구"},
		{"user-1", "송파구"},
		{"user-1", "아파트"},
		{"user-2", "아파트"},
	})

	index, err := NewMatchService(store).BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("build index: %v", err)
	}

	users := index.Match("서울 송파구 아파트", []string{"서울", "송파구", "아파트"})
	if !reflect.DeepEqual(users, []string{"user-1", "user-2"}) {
		t.Fatalf("expected deduplicated [user-1 user-2], got %v", users)
	}
}

func TestMatch_NoKeywords(t *testing.T) {
	store := storage.NewMemoryStore()

	index, err := NewMatchService(store).BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	if index.Size() != 0 {
		t.Fatalf("expected empty index, got size %d", index.Size())
	}
	if users := index.Match("서울 송파구 아파트", []string{"아파트"}); len(users) != 0 {
		t.Fatalf("expected no matches, got %v", users)
	}
}

func TestFindMatchingUsers(t *testing.T) {
	store := storage.NewMemoryStore()
	seedKeywords(t, store, [][2]string{{"user-1", "오피스텔"}})

	listing := &models.Listing{
		Title:       "인천 연수구 송도동 오피스텔 12층",
		KeywordTags: []string{"인천", "오피스텔"},
	}
	users, err := NewMatchService(store).FindMatchingUsers(context.Background(), listing)
	if err != nil {
		t.Fatalf("find matching users: %v", err)
	}
	if !reflect.DeepEqual(users, []string{"user-1"}) {
		t.Fatalf("expected [user-1], got %v", users)
	}
}

func TestMatchScore(t *testing.T) {
	listing := &models.Listing{
		Title:       "서울 송파구 잠실동 아파트",
		KeywordTags: []string{"서울", "송파구", "아파트"},
	}

	// Tag hits score 1.0 each; a substring-only hit scores 0.5.
	score := MatchScore(listing, []string{"아파트", "잠실동"})
	if score != 1.5 {
		t.Fatalf("expected score 1.5, got %v", score)
	}

	if score := MatchScore(listing, []string{"부산"}); score != 0 {
		t.Fatalf("expected score 0, got %v", score)
	}
}
