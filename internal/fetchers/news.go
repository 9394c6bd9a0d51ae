package fetchers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	"datahub/internal/logger"
	"datahub/internal/models"
)

const maxSummaryLength = 280

// NewsFetcher reads headlines from an RSS or Atom game news feed
type NewsFetcher struct {
	client *resty.Client
	parser *gofeed.Parser
	url    string
	log    *logger.Logger
}

// NewNewsFetcher creates a news fetcher; an empty url disables it
func NewNewsFetcher(client *resty.Client, url string) *NewsFetcher {
	if client == nil {
		client = resty.New().SetTimeout(10 * time.Second)
	}
	return &NewsFetcher{
		client: client,
		parser: gofeed.NewParser(),
		url:    url,
		log:    logger.Component("news"),
	}
}

// Enabled reports whether a feed URL is configured
func (f *NewsFetcher) Enabled() bool {
	return f != nil && f.url != ""
}

// Latest returns up to limit headlines, newest first as published by the feed.
// Failures are logged and yield an empty list.
func (f *NewsFetcher) Latest(ctx context.Context, limit int) []models.NewsItem {
	if !f.Enabled() {
		return nil
	}

	items, err := f.fetch(ctx)
	if err != nil {
		f.log.Warn("News feed unavailable", map[string]interface{}{
			"url":   f.url,
			"error": err.Error(),
		})
		return nil
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (f *NewsFetcher) fetch(ctx context.Context) ([]models.NewsItem, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml").
		Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news feed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("news feed returned status %d", resp.StatusCode())
	}

	feed, err := f.parser.ParseString(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, toNewsItem(it))
	}
	return items, nil
}

func toNewsItem(it *gofeed.Item) models.NewsItem {
	item := models.NewsItem{
		Title: strings.TrimSpace(it.Title),
		Link:  it.Link,
	}
	switch {
	case it.PublishedParsed != nil:
		item.Published = *it.PublishedParsed
	case it.UpdatedParsed != nil:
		item.Published = *it.UpdatedParsed
	}

	summary := []rune(strings.TrimSpace(it.Description))
	if len(summary) > maxSummaryLength {
		summary = append(summary[:maxSummaryLength], []rune("...")...)
	}
	item.Summary = string(summary)
	return item
}
