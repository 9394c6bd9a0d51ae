package fetchers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"datahub/internal/config"
	"datahub/internal/logger"
	"datahub/internal/mocks"
	"datahub/internal/models"
)

var (
	// ErrMissingField means the response object lacks the resource array field
	ErrMissingField = errors.New("response has no resource field")
	// ErrNotArray means the resource field is present but is not an array
	ErrNotArray = errors.New("resource field is not an array")
)

// Recorder receives the duration and outcome of every resource load
type Recorder interface {
	ObserveFetch(resource models.Resource, source models.DataSource, d time.Duration)
}

// Handler runs exactly once per resource for every Load call
type Handler func(generation uint64, result models.LoadResult)

// Endpoint describes where one resource is listed
type Endpoint struct {
	Resource models.Resource
	URL      string
	Limit    int
}

// Loader fetches the three game-data collections concurrently and
// substitutes generated records when a fetch fails.
type Loader struct {
	client     *resty.Client
	endpoints  []Endpoint
	mocks      *mocks.Generator
	recorder   Recorder
	mockupMode bool
	log        *logger.Logger
}

// NewLoader creates a loader for the configured backend
func NewLoader(cfg *config.Config, gen *mocks.Generator, recorder Recorder) *Loader {
	client := resty.New()
	client.SetTimeout(cfg.FetchTimeout)
	client.SetRetryCount(cfg.FetchRetries)
	client.SetRetryWaitTime(200 * time.Millisecond)
	client.SetRetryMaxWaitTime(2 * time.Second)
	client.SetHeader("Accept", "application/json")

	if gen == nil {
		gen = mocks.NewGenerator(nil)
	}

	return &Loader{
		client: client,
		endpoints: []Endpoint{
			{Resource: models.ResourcePlayers, URL: cfg.ResourceURL(cfg.PlayersPath), Limit: cfg.PlayersLimit},
			{Resource: models.ResourceCharacters, URL: cfg.ResourceURL(cfg.CharactersPath), Limit: cfg.CharactersLimit},
			{Resource: models.ResourceItems, URL: cfg.ResourceURL(cfg.ItemsPath), Limit: cfg.ItemsLimit},
		},
		mocks:      gen,
		recorder:   recorder,
		mockupMode: cfg.MockupMode,
		log:        logger.Component("loader"),
	}
}

// Endpoints returns the configured resource endpoints
func (l *Loader) Endpoints() []Endpoint {
	return append([]Endpoint(nil), l.endpoints...)
}

// Load starts one goroutine per resource and returns immediately. Each
// goroutine calls handler once, after either a successful fetch or the
// mock fallback. There is no combined completion signal.
func (l *Loader) Load(ctx context.Context, generation uint64, handler Handler) {
	for _, ep := range l.endpoints {
		go func(ep Endpoint) {
			handler(generation, l.loadOne(ctx, ep))
		}(ep)
	}
}

func (l *Loader) loadOne(ctx context.Context, ep Endpoint) models.LoadResult {
	start := time.Now()

	var result models.LoadResult
	if l.mockupMode {
		result = l.mocks.Fill(ep.Resource, mocks.DefaultCount(ep.Resource))
	} else {
		var err error
		result, err = l.fetch(ctx, ep)
		if err != nil {
			l.log.Warn("Fetch failed, using mock data", map[string]interface{}{
				"resource": string(ep.Resource),
				"url":      ep.URL,
				"error":    err.Error(),
			})
			result = l.mocks.Fill(ep.Resource, mocks.DefaultCount(ep.Resource))
			result.Err = err
		}
	}

	result.Duration = time.Since(start)
	if l.recorder != nil {
		l.recorder.ObserveFetch(ep.Resource, result.Source, result.Duration)
	}

	l.log.Debug("Resource loaded", map[string]interface{}{
		"resource": string(ep.Resource),
		"source":   string(result.Source),
		"count":    result.Count(),
		"duration": result.Duration.String(),
	})
	return result
}

// fetch lists one resource from the backend
func (l *Loader) fetch(ctx context.Context, ep Endpoint) (models.LoadResult, error) {
	result := models.LoadResult{Resource: ep.Resource, Source: models.SourceLive}

	resp, err := l.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action": "list",
			"limit":  strconv.Itoa(ep.Limit),
		}).
		Get(ep.URL)
	if err != nil {
		return result, fmt.Errorf("failed to fetch %s: %w", ep.Resource, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return result, fmt.Errorf("%s API returned status %d", ep.Resource, resp.StatusCode())
	}

	switch ep.Resource {
	case models.ResourcePlayers:
		err = decodeList(resp.Body(), string(ep.Resource), &result.Players)
	case models.ResourceCharacters:
		err = decodeList(resp.Body(), string(ep.Resource), &result.Characters)
	case models.ResourceItems:
		err = decodeList(resp.Body(), string(ep.Resource), &result.Items)
	default:
		err = fmt.Errorf("unknown resource %q", ep.Resource)
	}
	if err != nil {
		return result, fmt.Errorf("failed to parse %s response: %w", ep.Resource, err)
	}
	return result, nil
}

// decodeList extracts the named array field from a JSON object body
func decodeList(body []byte, field string, target interface{}) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}

	raw, ok := envelope[field]
	if !ok {
		return fmt.Errorf("%w %q", ErrMissingField, field)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return fmt.Errorf("%w: %q", ErrNotArray, field)
	}
	return json.Unmarshal(raw, target)
}
