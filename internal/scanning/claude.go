package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// receiptScanPrompt is the fixed prompt sent alongside every receipt image
const receiptScanPrompt = `Analyze this receipt image and extract the following information in JSON format:
{
  "vendor": "store name",
  "amount": 0.00,
  "date": "MM/DD/YYYY",
  "items": ["item1", "item2"],
  "raw_text": "full receipt text"
}

IMPORTANT INSTRUCTIONS:
- Extract the TOTAL amount from the receipt (after tax, all discounts applied)
- This should be the final amount paid
- Date should be in MM/DD/YYYY format
- List all visible items from the receipt in the items array
- Provide the complete text from the receipt in raw_text
- Do NOT try to determine if items are HSA-qualified - the user will do that manually

Example response:
{
  "vendor": "Walgreens",
  "amount": 24.99,
  "date": "11/07/2025",
  "items": ["Band-Aids", "Ibuprofen", "Paper towels"],
  "raw_text": "WALGREENS\nStore #1234\n..."
}`

const (
	defaultClaudeBaseURL = "https://api.anthropic.com"

	// DefaultClaudeModel is used when no model is configured
	DefaultClaudeModel = "claude-3-5-haiku-20241022"

	anthropicVersion = "2023-06-01"
	claudeTimeout    = 30 * time.Second
)

// Claude implements the Scanner interface using the Anthropic messages API
type Claude struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClaude creates a new Claude Scanner instance
func NewClaude(apiKey string, modelName string) (*Claude, error) {
	if apiKey == "" {
		return nil, &ConfigError{Msg: "claude api key is required"}
	}
	if modelName == "" {
		modelName = DefaultClaudeModel
	}

	return &Claude{
		baseURL: defaultClaudeBaseURL,
		apiKey:  apiKey,
		model:   modelName,
		client:  &http.Client{Timeout: claudeTimeout},
	}, nil
}

// claudeRequest represents the request body for the messages API
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type   string             `json:"type"`
	Source *claudeImageSource `json:"source,omitempty"`
	Text   string             `json:"text,omitempty"`
}

type claudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// claudeResponse represents the response from the messages API
type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// ScanReceipt sends the receipt image to the model and parses its reply
func (c *Claude) ScanReceipt(imageData []byte, mimeType string) (*ReceiptRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), claudeTimeout)
	defer cancel()

	reqBody := claudeRequest{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []claudeMessage{
			{
				Role: "user",
				Content: []claudeContent{
					{
						Type: "image",
						Source: &claudeImageSource{
							Type:      "base64",
							MediaType: mimeType,
							Data:      base64.StdEncoding.EncodeToString(imageData),
						},
					},
					{Type: "text", Text: receiptScanPrompt},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling claude API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	slog.Debug("Claude API response", "status", resp.StatusCode, "body", truncate(string(body), 500))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(claudeResp.Content) == 0 {
		return nil, fmt.Errorf("no content in claude response")
	}

	return parseModelText(claudeResp.Content[0].Text), nil
}

// Method identifies the extraction backend
func (c *Claude) Method() string { return "claude" }

// Model returns the configured model name
func (c *Claude) Model() string { return c.model }

// Close closes the Claude client (no-op for HTTP client)
func (c *Claude) Close() error { return nil }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
