package discord

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"technewsbot/internal/config"
	"technewsbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNotifier(url string) *Notifier {
	return NewNotifier(config.DiscordConfig{
		WebhookURL: url,
		Username:   "Digest Bot",
		AvatarURL:  "https://example.com/avatar.png",
	}, testLogger())
}

func TestDeliverPostsEmbeds(t *testing.T) {
	t.Parallel()

	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	published := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	err := newTestNotifier(srv.URL).Deliver(context.Background(), []domain.DisplayRecord{
		{
			SourceLabel: "Hacker News",
			Title:       "Story",
			URL:         "https://example.com/story",
			BodyText:    "Short summary",
			Accent:      0xFF6600,
			PublishedAt: published,
		},
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if got.Username != "Digest Bot" {
		t.Fatalf("unexpected username: %q", got.Username)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(got.Embeds))
	}
	e := got.Embeds[0]
	if e.Title != "Story" || e.URL != "https://example.com/story" || e.Description != "Short summary" {
		t.Fatalf("unexpected embed: %+v", e)
	}
	if e.Color != 0xFF6600 {
		t.Fatalf("unexpected color: %#x", e.Color)
	}
	if e.Footer == nil || e.Footer.Text != "Hacker News" {
		t.Fatalf("unexpected footer: %+v", e.Footer)
	}
	if e.Timestamp != "2026-08-24T10:00:00Z" {
		t.Fatalf("unexpected timestamp: %q", e.Timestamp)
	}
}

func TestDeliverRendersKeywordTags(t *testing.T) {
	t.Parallel()

	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).Deliver(context.Background(), []domain.DisplayRecord{
		{
			Title:    "Story",
			URL:      "https://example.com/story",
			BodyText: "Short summary",
			Keywords: []string{"golang", "security"},
		},
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	want := "`golang` `security`\nShort summary"
	if got.Embeds[0].Description != want {
		t.Fatalf("unexpected description: %q", got.Embeds[0].Description)
	}
}

func TestDeliverRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).Deliver(context.Background(), []domain.DisplayRecord{
		{Title: "Story", URL: "https://example.com/story"},
	})
	if err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}

func TestDeliverRequiresWebhookURL(t *testing.T) {
	t.Parallel()

	err := newTestNotifier("").Deliver(context.Background(), []domain.DisplayRecord{
		{Title: "Story", URL: "https://example.com/story"},
	})
	if err == nil {
		t.Fatalf("expected error for empty webhook url")
	}
}

func TestDeliverSkipsEmptyBatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty batch")
	}))
	defer srv.Close()

	if err := newTestNotifier(srv.URL).Deliver(context.Background(), nil); err != nil {
		t.Fatalf("deliver: %v", err)
	}
}

func TestAnnouncePostsHeader(t *testing.T) {
	t.Parallel()

	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	n.now = func() time.Time { return time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC) }

	if err := n.Announce(context.Background(), 7); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if got.Content != "**Tech digest for 2026-08-26**: 7 article(s)" {
		t.Fatalf("unexpected header content: %q", got.Content)
	}
	if len(got.Embeds) != 0 {
		t.Fatalf("header must not carry embeds, got %d", len(got.Embeds))
	}
}
