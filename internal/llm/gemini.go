package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	genai "google.golang.org/genai"

	"github.com/RichardoC/humaniza/internal/models"
	"github.com/RichardoC/humaniza/internal/prompts"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-3-flash-preview"

// GeminiConfig configures the Gemini backend. BaseURL and HTTPClient are only
// needed to point the client somewhere other than the public API.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini implements Generator with the Google Gen AI SDK.
type Gemini struct {
	client  *genai.Client
	model   string
	prompts *prompts.Catalog
}

func NewGemini(ctx context.Context, cfg GeminiConfig, catalog *prompts.Catalog) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if catalog == nil {
		catalog = prompts.Default()
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: c, model: cfg.Model, prompts: catalog}, nil
}

func (g *Gemini) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return res, nil
}

func (g *Gemini) Humanize(ctx context.Context, text string, mode models.Mode) (*models.Generation, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}
	res, err := g.generate(ctx,
		[]*genai.Content{genai.NewContentFromText(g.prompts.Humanize(text, mode), genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.prompts.System, genai.RoleUser),
			Temperature:       genai.Ptr[float32](humanizeTemperature),
			TopP:              genai.Ptr[float32](humanizeTopP),
		})
	if err != nil {
		return nil, err
	}
	out, err := finish(res.Text())
	if err != nil {
		return nil, err
	}
	return &models.Generation{Text: out, Sources: groundingSources(res)}, nil
}

func (g *Gemini) Search(ctx context.Context, query string) (*models.Generation, error) {
	if err := checkInput(query); err != nil {
		return nil, err
	}
	res, err := g.generate(ctx,
		[]*genai.Content{genai.NewContentFromText(query, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.prompts.Search, genai.RoleUser),
			Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		})
	if err != nil {
		return nil, err
	}
	out, err := finish(res.Text())
	if err != nil {
		return nil, err
	}
	return &models.Generation{Text: out, Sources: groundingSources(res)}, nil
}

func (g *Gemini) Detect(ctx context.Context, text string) (*models.Detection, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}
	res, err := g.generate(ctx,
		[]*genai.Content{genai.NewContentFromText(g.prompts.Detect(text), genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.prompts.Detection, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"score":     {Type: genai.TypeNumber},
					"label":     {Type: genai.TypeString},
					"reasoning": {Type: genai.TypeString},
				},
				Required: []string{"score", "label", "reasoning"},
			},
		})
	if err != nil {
		return nil, err
	}
	return parseDetection(res.Text())
}

func (g *Gemini) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyInput
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	prompt := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			{Text: g.prompts.OCR},
		},
	}
	res, err := g.generate(ctx, []*genai.Content{prompt}, nil)
	if err != nil {
		return "", err
	}
	return finish(res.Text())
}

// groundingSources collects the distinct web sources the answer cites.
func groundingSources(res *genai.GenerateContentResponse) []models.Source {
	sources := []models.Source{}
	seen := map[string]bool{}
	for _, cand := range res.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true
			sources = append(sources, models.Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return sources
}
