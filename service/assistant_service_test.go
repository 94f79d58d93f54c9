package service

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/songwish/assistant-be/database"
	"github.com/songwish/assistant-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAI returns a canned completion and records the prompt it was given.
type fakeAI struct {
	response   string
	lastPrompt string
	err        error
}

func (f *fakeAI) Complete(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeAI) CompleteStream(ctx context.Context, prompt string, handler StreamHandler) error {
	f.lastPrompt = prompt
	if f.err != nil {
		return f.err
	}
	for _, part := range strings.SplitAfter(f.response, " ") {
		handler(part)
	}
	return nil
}

type recordingLogger struct {
	email    string
	query    string
	response string
	sources  []string
	calls    int
}

func (r *recordingLogger) LogQuery(ctx context.Context, email, query, response string, sources []string) {
	r.email = email
	r.query = query
	r.response = response
	r.sources = sources
	r.calls++
}

func newTestAssistant(t *testing.T, ai AIService, logger QueryLogger) *AssistantService {
	t.Helper()
	index, _ := newTestIndexService(t, map[string]string{
		"remidi-4.md": "# reMIDI 4\n\nA polyphonic MIDI sampler with loop slicing.",
	})
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testAccountsResponse))
	})
	mux.HandleFunc("/orders/ord-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testOrderOne))
	})
	mux.HandleFunc("/orders/ord-2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testOrderTwo))
	})
	fastspring := newTestFastSpring(t, mux)
	return NewAssistantService(index, fastspring, ai, logger)
}

func TestAnswerWithCitations(t *testing.T) {
	ai := &fakeAI{response: "reMIDI 4 does loop slicing [Source 1]."}
	logger := &recordingLogger{}
	assistant := newTestAssistant(t, ai, logger)

	resp, err := assistant.Answer(context.Background(), types.QueryRequest{
		Query:     "does reMIDI do slicing?",
		Citations: true,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "reMIDI 4 does loop slicing [Source 1].", resp.Response)
	assert.Equal(t, []string{"remidi-4.md"}, resp.Sources)
	assert.True(t, resp.CitationsEnabled)
	assert.False(t, resp.AccountDataUsed)
	assert.Nil(t, resp.CustomerInfo)

	assert.Contains(t, ai.lastPrompt, "[Source 1: remidi-4.md]")
	assert.Contains(t, ai.lastPrompt, "CUSTOMER QUERY: does reMIDI do slicing?")

	assert.Equal(t, 1, logger.calls)
	assert.Equal(t, "does reMIDI do slicing?", logger.query)
	assert.Equal(t, []string{"remidi-4.md"}, logger.sources)
}

func TestAnswerCitationsDisabled(t *testing.T) {
	ai := &fakeAI{response: "answer [Source 1]"}
	assistant := newTestAssistant(t, ai, nil)

	resp, err := assistant.Answer(context.Background(), types.QueryRequest{Query: "q"}, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Sources)
	assert.False(t, resp.CitationsEnabled)
}

func TestAnswerUsesAccountGrounding(t *testing.T) {
	ai := &fakeAI{response: "You own reMIDI 4."}
	assistant := newTestAssistant(t, ai, nil)

	resp, err := assistant.Answer(context.Background(), types.QueryRequest{Query: "what do I own?"}, "ada@example.com")
	require.NoError(t, err)

	assert.True(t, resp.AccountDataUsed)
	require.NotNil(t, resp.CustomerInfo)
	assert.Equal(t, "Ada", resp.CustomerInfo.FirstName)
	assert.Contains(t, ai.lastPrompt, "CUSTOMER ACCOUNT DATA:")
	assert.Contains(t, ai.lastPrompt, "CUSTOMER ACCOUNT INFORMATION FOR Ada Lovelace")
	assert.Contains(t, ai.lastPrompt, "The customer's name is Ada")
}

func TestAnswerAccountFailureDegradesToAnonymous(t *testing.T) {
	ai := &fakeAI{response: "generic answer"}
	index, _ := newTestIndexService(t, map[string]string{
		"faq.md": "# FAQ\n\nInstall help.",
	})
	down := http.NewServeMux()
	down.HandleFunc("/accounts", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	assistant := NewAssistantService(index, newTestFastSpring(t, down), ai, nil)

	resp, err := assistant.Answer(context.Background(), types.QueryRequest{Query: "help"}, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, resp.AccountDataUsed)
	assert.Nil(t, resp.CustomerInfo)
	assert.Equal(t, "generic answer", resp.Response)
}

// noResultStore accepts chunks but never returns a match.
type noResultStore struct{}

func (noResultStore) AddChunks(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	return nil
}

func (noResultStore) Search(ctx context.Context, queryVector []float32, limit int) ([]types.RetrievedPassage, error) {
	return nil, nil
}

func (noResultStore) Count(ctx context.Context) (int, error) { return 0, nil }

func TestAnswerFallbackWhenUngrounded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.md"), []byte("# FAQ\n\nInstall help."), 0644))
	index := NewIndexService(NewCorpusService(DefaultChunkerConfig), &fakeEmbedder{}, dir, "",
		func() database.VectorStore { return noResultStore{} })
	ai := &fakeAI{response: "should not be used"}
	assistant := NewAssistantService(index, nil, ai, nil)

	resp, err := assistant.Answer(context.Background(), types.QueryRequest{Query: "q", Citations: true}, "")
	require.NoError(t, err)
	assert.Equal(t, FallbackResponse, resp.Response)
	assert.Empty(t, resp.Sources)
	assert.True(t, resp.CitationsEnabled)
}

func TestStreamDeliversChunksAndSources(t *testing.T) {
	ai := &fakeAI{response: "slicing works [Source 1]"}
	assistant := newTestAssistant(t, ai, nil)

	var streamed strings.Builder
	sources, err := assistant.Stream(context.Background(), "slicing?", 3, func(chunk string) {
		streamed.WriteString(chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "slicing works [Source 1]", streamed.String())
	assert.Equal(t, []string{"remidi-4.md"}, sources)
}

func TestComposePrompt(t *testing.T) {
	assistant := newTestAssistant(t, &fakeAI{}, nil)

	prompt, sourceNames, err := assistant.ComposePrompt(context.Background(), "slicing", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"remidi-4.md"}, sourceNames)
	assert.Contains(t, prompt, "KNOWLEDGE BASE CONTEXT:")
	assert.NotContains(t, prompt, "CUSTOMER ACCOUNT DATA:")
}
