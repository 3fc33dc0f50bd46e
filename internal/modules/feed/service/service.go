package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/lecture-telegram-bot/internal/modules/feed/domain"
	lectureDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/domain"
	lectureRepo "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/lecture/repository"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FeedSize is the number of newest lectures in the feed
const FeedSize = 50

// Service handles lecture feed generation
type Service struct {
	lectures lectureRepo.Repository
	meta     domain.Meta
}

// New creates a new feed service
func New(lectures lectureRepo.Repository, meta domain.Meta) *Service {
	return &Service{
		lectures: lectures,
		meta:     meta,
	}
}

// GenerateFeed builds a feed over the newest lectures. Item links point at
// the raw file route under baseURL.
func (s *Service) GenerateFeed(ctx context.Context, baseURL string) (*feeds.Feed, error) {
	lectures, err := s.lectures.GetLectures(ctx, lectureDomain.ListFilter{Limit: FeedSize})
	if err != nil {
		return nil, oops.With("context", "failed to get lectures").Wrap(err)
	}

	baseURL = strings.TrimRight(baseURL, "/")
	feed := &feeds.Feed{
		Title:       s.meta.Title,
		Link:        &feeds.Link{Href: baseURL + "/feed.rss"},
		Description: s.meta.Description,
		Author:      &feeds.Author{Name: s.meta.Author},
	}

	if len(lectures) > 0 {
		feed.Created = lectures[len(lectures)-1].CreatedAt
		feed.Updated = lectures[0].CreatedAt
	}

	feed.Items = lo.Map(lectures, func(l *lectureDomain.Lecture, _ int) *feeds.Item {
		return lectureToFeedItem(l, baseURL)
	})

	slog.Debug("Feed generated", "items", len(feed.Items))
	return feed, nil
}

func lectureToFeedItem(l *lectureDomain.Lecture, baseURL string) *feeds.Item {
	description := l.Description
	if description == "" {
		description = "Без опису"
	}
	description = fmt.Sprintf("%s\n\nПредмет: %s\nРозмір: %s", description, l.Subject, lectureDomain.FormatFileSize(l.FileSize))

	link := fmt.Sprintf("%s/uploads/%s", baseURL, filepath.Base(l.FilePath))
	content := fmt.Sprintf("<p>%s</p><p><a href=\"%s\">%s</a></p>",
		strings.ReplaceAll(html.EscapeString(description), "\n", "<br>"),
		html.EscapeString(link),
		html.EscapeString(l.DisplayName()))

	return &feeds.Item{
		Title:       truncate(l.Title, 100),
		Link:        &feeds.Link{Href: link},
		Description: description,
		Content:     content,
		Created:     l.CreatedAt,
		Id:          l.ID,
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
