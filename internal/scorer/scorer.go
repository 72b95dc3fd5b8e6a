package scorer

import (
	"sort"
	"strings"

	"technewsbot/internal/config"
	"technewsbot/internal/domain"
)

// Scorer computes keyword relevance for articles. Matching is
// case-insensitive; every occurrence counts, with title hits weighted above
// body hits. Scoring is deterministic: no randomness, no external calls.
type Scorer struct {
	keywords    []string
	titleWeight float64
	bodyWeight  float64
}

// New builds a Scorer from the configured keyword set and weights.
func New(keywords []string, weights config.ScoringConfig) *Scorer {
	return &Scorer{
		keywords:    keywords,
		titleWeight: weights.TitleWeight,
		bodyWeight:  weights.BodyWeight,
	}
}

// Rank scores every article, drops those matching no keyword, and returns the
// remainder sorted by score descending, ties broken by most recent
// publication time.
func (s *Scorer) Rank(articles []domain.Article) []domain.Article {
	ranked := make([]domain.Article, 0, len(articles))

	for _, article := range articles {
		score, matched := s.score(article)
		if score == 0 {
			continue
		}
		article.Score = score
		article.MatchedKeywords = matched
		ranked = append(ranked, article)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].PublishedAt.After(ranked[j].PublishedAt)
	})

	return ranked
}

func (s *Scorer) score(article domain.Article) (float64, []string) {
	title := strings.ToLower(article.Title)
	body := strings.ToLower(article.RawContent)

	var (
		total   float64
		matched []string
	)

	for _, kw := range s.keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}

		titleHits := strings.Count(title, needle)
		bodyHits := strings.Count(body, needle)
		if titleHits == 0 && bodyHits == 0 {
			continue
		}

		total += float64(titleHits)*s.titleWeight + float64(bodyHits)*s.bodyWeight
		matched = append(matched, kw)
	}

	return total, matched
}
