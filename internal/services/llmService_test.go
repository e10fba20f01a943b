package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codequest/internal/config"
)

func TestOpenAIGenerator(t *testing.T) {
	var gotModel, gotPrompt, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) || len(body.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotModel = body.Model
		gotPrompt = body.Messages[len(body.Messages)-1].Content

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"` + "```markdown\\n## Title\\nLoops\\n```" + `"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("test-key", "gpt-test", srv.URL)
	text, err := gen.Generate(context.Background(), "explain loops")
	require.NoError(t, err)

	assert.Equal(t, "## Title\nLoops", text)
	assert.Equal(t, "gpt-test", gotModel)
	assert.Equal(t, "explain loops", gotPrompt)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "openai", gen.Name())
}

func TestOpenAIGeneratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIGenerator("test-key", "gpt-test", srv.URL).Generate(context.Background(), "hi")
	assert.Error(t, err)
}

func TestNewGeneratorSelection(t *testing.T) {
	gen, err := NewGenerator(context.Background(), &config.Config{AIProvider: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, "disabled", gen.Name())

	_, err = gen.Generate(context.Background(), "hi")
	assert.True(t, errors.Is(err, ErrGeneratorDisabled))

	gen, err = NewGenerator(context.Background(), &config.Config{AIProvider: "openai", OpenAIAPIKey: "k", OpenAIModel: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "openai", gen.Name())

	_, err = NewGenerator(context.Background(), &config.Config{AIProvider: "llama"})
	assert.Error(t, err)
}

func TestCleanLLMResponse(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{name: "plain", in: "  ## Title\nLoops \n", want: "## Title\nLoops"},
		{name: "markdown fence", in: "```markdown\n## Title\nLoops\n```", want: "## Title\nLoops"},
		{name: "bare fence", in: "```\n## Title\n```", want: "## Title"},
		{name: "code answer kept", in: "```python\nprint(1)\n```", want: "```python\nprint(1)\n```"},
		{name: "two blocks kept", in: "```\na\n```\ntext\n```\nb\n```", want: "```\na\n```\ntext\n```\nb\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanLLMResponse(tt.in))
		})
	}
}
