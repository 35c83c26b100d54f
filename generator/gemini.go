package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/Rajangupta9/taskflow/config"
	"github.com/Rajangupta9/taskflow/models"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini calls the Gemini API with an API key.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGemini(ctx context.Context, cfg config.GeneratorConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini provider needs generator.api_key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.GeminiURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{client: client, model: model, timeout: cfg.Timeout}, nil
}

// proposalResponseSchema constrains the model output server side. The
// response is still checked by parseProposals.
func proposalResponseSchema() *genai.Schema {
	categories := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		categories = append(categories, string(c))
	}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":    {Type: genai.TypeString, Description: "A concise action title"},
				"category": {Type: genai.TypeString, Enum: categories},
				"status":   {Type: genai.TypeString, Enum: generatedStatuses},
			},
			Required: []string{"title", "category"},
		},
	}
}

func (g *Gemini) Generate(ctx context.Context, goal string, date time.Time) ([]Proposal, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(userPrompt(goal, date)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    proposalResponseSchema(),
		})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %w", ErrGeneration, err)
	}

	text := resp.Text()
	if text == "" {
		return []Proposal{}, nil
	}
	return parseProposals(text)
}
