package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"technewsbot/internal/domain"
	"technewsbot/internal/ports"
)

// RSSSource fetches RSS 2.0 (and minimal Atom) documents over HTTP and
// decodes them into raw items in document order.
type RSSSource struct {
	client *resty.Client
	logger *slog.Logger
}

var _ ports.FeedSource = (*RSSSource)(nil)

// NewRSSSource builds an HTTP-backed feed source with the given per-request
// timeout.
func NewRSSSource(timeout time.Duration, logger *slog.Logger) *RSSSource {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "technewsbot/1.0")
	return &RSSSource{client: client, logger: logger}
}

// Fetch retrieves and parses one feed document. Entries missing a title or
// link are dropped.
func (s *RSSSource) Fetch(ctx context.Context, sourceURL string) ([]domain.RawItem, error) {
	resp, err := s.client.R().SetContext(ctx).Get(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode())
	}

	items, err := parseFeed(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	s.logger.Debug("feed fetched", "url", sourceURL, "items", len(items))
	return items, nil
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type atomDocument struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Summary string     `xml:"summary"`
	Updated string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

func parseFeed(data []byte) ([]domain.RawItem, error) {
	var rss rssDocument
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return fromRSS(rss.Channel.Items), nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(data, &atom); err != nil {
		return nil, err
	}
	if len(atom.Entries) == 0 {
		return nil, fmt.Errorf("document contains no feed entries")
	}
	return fromAtom(atom.Entries), nil
}

func fromRSS(entries []rssItem) []domain.RawItem {
	items := make([]domain.RawItem, 0, len(entries))
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		link := strings.TrimSpace(e.Link)
		if title == "" || link == "" {
			continue
		}
		items = append(items, domain.RawItem{
			Title:       title,
			URL:         link,
			Body:        strings.TrimSpace(e.Description),
			PublishedAt: parseDate(e.PubDate),
		})
	}
	return items
}

func fromAtom(entries []atomEntry) []domain.RawItem {
	items := make([]domain.RawItem, 0, len(entries))
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		link := atomHref(e.Links)
		if title == "" || link == "" {
			continue
		}
		items = append(items, domain.RawItem{
			Title:       title,
			URL:         link,
			Body:        strings.TrimSpace(e.Summary),
			PublishedAt: parseDate(e.Updated),
		})
	}
	return items
}

func atomHref(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// parseDate is tolerant: feeds disagree wildly on date formats, and a zero
// time only affects tie-breaking order downstream.
func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
