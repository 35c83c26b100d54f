package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rajangupta9/taskflow/config"
)

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Ollama talks to a local model server's /api/generate endpoint.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOllama(cfg config.GeneratorConfig) *Ollama {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = "llama3"
	}
	return &Ollama{
		baseURL:    strings.TrimRight(cfg.OllamaURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (o *Ollama) Generate(ctx context.Context, goal string, date time.Time) ([]Proposal, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  o.model,
		Prompt: userPrompt(goal, date) + "\n\n" + jsonHint,
		System: systemInstruction,
		Format: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to ollama failed: %w", ErrGeneration, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", ErrGeneration, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out ollamaResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrGeneration, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrGeneration, out.Error)
	}
	return parseProposals(out.Response)
}
