package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/RichardoC/humaniza/internal/models"
	"github.com/RichardoC/humaniza/internal/prompts"
)

// Service implements Generator against any OpenAI-compatible endpoint (OpenAI,
// Ollama, vLLM) through langchaingo. It has no web search tool, so Search answers
// from the model alone and carries no sources.
type Service struct {
	llm     llms.Model
	prompts *prompts.Catalog
}

func NewOpenAI(baseURL, token, model string, catalog *prompts.Catalog) (*Service, error) {
	if baseURL == "" {
		return nil, errors.New("missing OPENAI_BASE_URL")
	}
	if token == "" {
		// Local servers ignore the key but the client insists on one.
		token = "none"
	}
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return NewService(llm, catalog), nil
}

// NewService wraps an existing langchaingo model.
func NewService(llm llms.Model, catalog *prompts.Catalog) *Service {
	if catalog == nil {
		catalog = prompts.Default()
	}
	return &Service{llm: llm, prompts: catalog}
}

func (s *Service) complete(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (string, error) {
	resp, err := s.llm.GenerateContent(ctx, messages, options...)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

func (s *Service) Humanize(ctx context.Context, text string, mode models.Mode) (*models.Generation, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}
	completion, err := s.complete(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, s.prompts.System),
		llms.TextParts(llms.ChatMessageTypeHuman, s.prompts.Humanize(text, mode)),
	}, llms.WithTemperature(humanizeTemperature), llms.WithTopP(humanizeTopP))
	if err != nil {
		return nil, err
	}
	out, err := finish(completion)
	if err != nil {
		return nil, err
	}
	return &models.Generation{Text: out, Sources: []models.Source{}}, nil
}

func (s *Service) Search(ctx context.Context, query string) (*models.Generation, error) {
	if err := checkInput(query); err != nil {
		return nil, err
	}
	completion, err := s.complete(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, s.prompts.Search),
		llms.TextParts(llms.ChatMessageTypeHuman, query),
	})
	if err != nil {
		return nil, err
	}
	out, err := finish(completion)
	if err != nil {
		return nil, err
	}
	return &models.Generation{Text: out, Sources: []models.Source{}}, nil
}

func (s *Service) Detect(ctx context.Context, text string) (*models.Detection, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}
	completion, err := s.complete(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, s.prompts.Detection),
		llms.TextParts(llms.ChatMessageTypeHuman, s.prompts.Detect(text)),
	}, llms.WithJSONMode())
	if err != nil {
		return nil, err
	}
	return parseDetection(completion)
}

func (s *Service) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyInput
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	completion, err := s.complete(ctx, []llms.MessageContent{{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.BinaryPart(mimeType, image),
			llms.TextPart(s.prompts.OCR),
		},
	}})
	if err != nil {
		return "", err
	}
	return finish(completion)
}
