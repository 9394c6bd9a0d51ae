package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datahub/internal/analytics"
	"datahub/internal/models"
)

func testFacts() Facts {
	return Facts{
		GeneratedAt: time.Date(2025, 9, 17, 14, 30, 0, 0, time.UTC),
		Summary:     analytics.Summary{Players: 500, Characters: 1000, Items: 200, AverageLevel: 50.5, TopClass: "Mage"},
		Sources: map[models.Resource]models.DataSource{
			models.ResourcePlayers:    models.SourceLive,
			models.ResourceCharacters: models.SourceMock,
			models.ResourceItems:      models.SourceLive,
		},
		Classes: analytics.Histogram{Labels: []string{"Mage"}, Counts: []int{1000}},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(testFacts())
	require.NoError(t, err)

	assert.Contains(t, prompt, "2025-09-17 14:30 UTC")
	assert.Contains(t, prompt, `"players": 500`)
	assert.Contains(t, prompt, "Note: characters were generated locally")
}

func TestBuildPromptAllLive(t *testing.T) {
	facts := testFacts()
	facts.Sources[models.ResourceCharacters] = models.SourceLive

	prompt, err := BuildPrompt(facts)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "generated locally")
}

func newFakeOpenAI(t *testing.T, content string, choices bool) (*OpenAIClient, *openai.ChatCompletionRequest) {
	t.Helper()
	var got openai.ChatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		resp := openai.ChatCompletionResponse{ID: "cmpl-1", Object: "chat.completion", Model: got.Model}
		if choices {
			resp.Choices = []openai.ChatCompletionChoice{{
				Index:   0,
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewOpenAIClientWithConfig(cfg, "test-model"), &got
}

func TestNarrate(t *testing.T) {
	client, got := newFakeOpenAI(t, "  ## Digest\nAll good.  ", true)

	narrative, err := client.Narrate(context.Background(), testFacts())
	require.NoError(t, err)
	assert.Equal(t, "## Digest\nAll good.", narrative)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, client.GetSystemPrompt(), got.Messages[0].Content)
	assert.Contains(t, got.Messages[1].Content, "Dashboard facts")
}

func TestNarrateNoChoices(t *testing.T) {
	client, _ := newFakeOpenAI(t, "", false)

	_, err := client.Narrate(context.Background(), testFacts())
	assert.ErrorIs(t, err, ErrNoChoices)
}
