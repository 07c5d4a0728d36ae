package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-3-haiku-20240307"
	maxTokens  = 64
)

const systemPrompt = `You translate messages from farmers about their feed stock into exactly one bot command.
Supported commands:
/forecast <days>            reorder suggestions; days is one of 7, 14, 30, 60 (default 30)
/lowstock                   items at or below their alert level
/reorder <inventory-id> <days>  draft a purchase order for an inventory id
/help                       anything else
Messages may be in French or English. Answer with the command only, no explanation.`

// Client defines the interface for AI text processing.
type Client interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string) Client {
	return newClient(apiKey, apiURL)
}

func newClient(apiKey, url string) *anthropicClient {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client, url: url}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// TranslateToCommand maps free text to a slash command. The assistant turn is
// prefilled with "/" so the model can only complete a command.
func (c *anthropicClient) TranslateToCommand(ctx context.Context, input string) (string, error) {
	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: input},
			{Role: "assistant", Content: "/"},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", fmt.Errorf("empty response from ai")
	}

	command := strings.TrimSpace(respBody.Content[0].Text)
	if idx := strings.IndexByte(command, '\n'); idx >= 0 {
		command = command[:idx]
	}
	command = strings.Trim(command, "` ")
	if command == "" {
		return "", fmt.Errorf("empty command from ai")
	}

	return "/" + strings.TrimPrefix(command, "/"), nil
}
