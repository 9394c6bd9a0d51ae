package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"datahub/internal/analytics"
	"datahub/internal/logger"
	"datahub/internal/models"
)

// ErrNoChoices is returned when the API answers without any completion
var ErrNoChoices = errors.New("no response from OpenAI")

const requestTimeout = 60 * time.Second

const defaultSystemPrompt = "You are a game analytics assistant. Write a short dashboard digest in markdown " +
	"for the operators of an online game, based only on the JSON facts provided. Mention player, " +
	"character and item totals, the class mix and level spread, plus item types and clan sizes. If any data source is marked " +
	"mock, say clearly that those numbers are generated demo data. Use at most three short sections " +
	"and no tables."

// Facts is the data a narrative is written from
type Facts struct {
	GeneratedAt   time.Time                             `json:"generatedAt"`
	Summary       analytics.Summary                     `json:"summary"`
	Sources       map[models.Resource]models.DataSource `json:"sources"`
	Classes       analytics.Histogram                   `json:"classes"`
	Levels        analytics.Histogram                   `json:"levels"`
	ItemTypes     analytics.Histogram                   `json:"itemTypes"`
	Clans         analytics.Histogram                   `json:"clans"`
	TopCharacters []models.Character                    `json:"topCharacters"`
	News          []models.NewsItem                     `json:"news,omitempty"`
}

// OpenAIClient handles OpenAI API interactions
type OpenAIClient struct {
	client       *openai.Client
	model        string
	systemPrompt string
	log          *logger.Logger
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return NewOpenAIClientWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIClientWithConfig creates a client with a custom API config (base URL, HTTP client)
func NewOpenAIClientWithConfig(cfg openai.ClientConfig, model string) *OpenAIClient {
	return &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		systemPrompt: defaultSystemPrompt,
		log:          logger.Component("llm"),
	}
}

// GetSystemPrompt returns the system prompt sent with every request
func (c *OpenAIClient) GetSystemPrompt() string {
	return c.systemPrompt
}

// Narrate asks the model for a markdown digest of facts
func (c *OpenAIClient) Narrate(ctx context.Context, facts Facts) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	prompt, err := BuildPrompt(facts)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   1200,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	narrative := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.log.Info("Generated snapshot narrative", map[string]interface{}{
		"model":      c.model,
		"characters": len(narrative),
		"duration":   time.Since(start).String(),
	})
	return narrative, nil
}

// BuildPrompt renders the user prompt for facts
func BuildPrompt(facts Facts) (string, error) {
	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode narrative facts: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Dashboard facts (as of %s)\n\n", facts.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	b.WriteString("```json\n")
	b.Write(data)
	b.WriteString("\n```\n\n")

	var mock []string
	for _, r := range models.Resources {
		if facts.Sources[r] == models.SourceMock {
			mock = append(mock, string(r))
		}
	}
	if len(mock) > 0 {
		fmt.Fprintf(&b, "Note: %s were generated locally because the backend was unavailable.\n\n", strings.Join(mock, ", "))
	}

	b.WriteString("Write the digest now.")
	return b.String(), nil
}
