package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

const classifyPrompt = "You are a buy-side AI signal filter. Summarize the item " +
	"and provide a 2-3 sentence analysis of why it matters for AI investors. " +
	"Keep it factual and concise."

const maxClassifyRunes = 6000

// Classification is the outcome of the optional language-model hook. The
// core score stands alone; ScoreAdjust is an additive refinement.
type Classification struct {
	Summary     string
	Analysis    string
	ScoreAdjust float64
}

// Client talks to an OpenAI-compatible chat completion endpoint. A nil or
// keyless client is a valid no-op classifier.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		endpoint: defaultEndpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify sends the item text and returns the model's summary. Callers
// treat any error as "no classification"; it never blocks scoring.
func (c *Client) Classify(ctx context.Context, text string) (*Classification, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("classifier is not configured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": classifyPrompt},
			{"role": "user", "content": truncateRunes(text, maxClassifyRunes)},
		},
		"temperature": 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal classify payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("classifier error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode classify response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	return &Classification{
		Summary: strings.TrimSpace(decoded.Choices[0].Message.Content),
	}, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
