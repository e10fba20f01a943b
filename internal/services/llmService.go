package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"codequest/internal/config"
)

var ErrGeneratorDisabled = errors.New("ai provider is not configured")

// Generator produces markdown text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewGenerator picks the provider named by AI_PROVIDER. A missing API key yields a
// disabled generator so the API still starts; AI endpoints then answer with the placeholder.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.AIProvider {
	case "", "gemini", "google":
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY not set, AI features will return placeholders")
			return DisabledGenerator{}, nil
		}
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY not set, AI features will return placeholders")
			return DisabledGenerator{}, nil
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
	}
}

type geminiGenerator struct {
	llm   llms.Model
	model string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI LLM: %w", err)
	}
	return &geminiGenerator{llm: llm, model: model}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from Gemini: %w", err)
	}
	return cleanLLMResponse(text), nil
}

func (g *geminiGenerator) Name() string {
	return "gemini"
}

type openAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator talks to the OpenAI chat completions API or any compatible endpoint
// when baseURL is set.
func NewOpenAIGenerator(apiKey, model, baseURL string) Generator {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &openAIGenerator{client: openai.NewClientWithConfig(clientConfig), model: model}
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a friendly coding tutor for children. Answer in Markdown."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content from OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return cleanLLMResponse(resp.Choices[0].Message.Content), nil
}

func (g *openAIGenerator) Name() string {
	return "openai"
}

// DisabledGenerator always fails with ErrGeneratorDisabled.
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(context.Context, string) (string, error) {
	return "", ErrGeneratorDisabled
}

func (DisabledGenerator) Name() string {
	return "disabled"
}

// cleanLLMResponse removes a markdown code fence wrapping the whole answer.
func cleanLLMResponse(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") {
		return cleaned
	}
	firstNL := strings.IndexByte(cleaned, '\n')
	if firstNL < 0 || firstNL > len(cleaned)-3 {
		return cleaned
	}

	lang := strings.ToLower(strings.TrimSpace(cleaned[3:firstNL]))
	if lang != "" && lang != "markdown" && lang != "md" {
		return cleaned
	}
	inner := cleaned[firstNL+1 : len(cleaned)-3]
	// an unlabeled fence around text that has its own fences is two separate blocks
	if lang == "" && strings.Contains(inner, "```") {
		return cleaned
	}
	return strings.TrimSpace(inner)
}
