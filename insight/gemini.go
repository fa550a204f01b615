package insight

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ============================================================================
// GEMINI CLIENT — Narrative generation over the AI boundary
// ============================================================================
// The ONLY file that makes external API calls. It receives the prompt built
// by the summarizer and returns the narrative text from
// candidates[0].content.parts[0].text. Any other response shape, or a
// non-success status, surfaces as an insight-generation error.
// ============================================================================

// ErrEmptyResponse reports a well-formed response with no candidates.
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// Config holds the AI provider configuration.
type Config struct {
	APIKey   string // Gemini API key (consumer's key)
	Model    string // Model name (empty = default)
	Endpoint string // API endpoint override (empty = default)
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a Gemini client with sensible defaults.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// ============================================================================
// WIRE SHAPES
// ============================================================================

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ============================================================================
// CALL
// ============================================================================

// Generate sends a prompt and returns the narrative text.
func (c *Client) Generate(prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s",
		c.config.Endpoint, c.config.Model, c.config.APIKey)

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	log.Printf("🔄 Insight: calling %s (%d byte prompt)", c.config.Model, len(prompt))

	resp, err := c.client.Post(url, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("insight request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read insight response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse insight response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
