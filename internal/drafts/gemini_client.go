package drafts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	generativeScope       = "https://www.googleapis.com/auth/generative-language"
)

// GeminiClient calls the Generative Language generateContent method.
// With an API key it sends x-goog-api-key; without one it authenticates
// with application default credentials.
type GeminiClient struct {
	Endpoint string
	Model    string
	APIKey   string
	HTTP     *http.Client
}

func NewGeminiClient(ctx context.Context, model, apiKey string, timeout time.Duration) (*GeminiClient, error) {
	hc := &http.Client{Timeout: timeout}
	if apiKey == "" {
		ts, err := google.DefaultTokenSource(ctx, generativeScope)
		if err != nil {
			return nil, fmt.Errorf("gemini credentials: %w", err)
		}
		hc = oauth2.NewClient(ctx, ts)
		hc.Timeout = timeout
	}
	return &GeminiClient{
		Endpoint: DefaultGeminiEndpoint,
		Model:    model,
		APIKey:   apiKey,
		HTTP:     hc,
	}, nil
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func (c *GeminiClient) Generate(ctx context.Context, in Input) (string, error) {
	b, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: fmt.Sprintf(prompt, in.Notes)},
				{InlineData: &geminiInlineData{
					MimeType: in.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(in.Image),
				}},
			},
		}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.Endpoint, "/"), c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-goog-api-key", c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("gemini read: %w", err)
	}

	var out geminiResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode >= 400 || out.Error != nil {
		ue := &UpstreamError{Status: resp.StatusCode}
		if out.Error != nil {
			ue.Message = out.Error.Message
		} else if decodeErr != nil {
			ue.Message = string(bytes.TrimSpace(body))
		}
		return "", ue
	}
	if decodeErr != nil {
		return "", fmt.Errorf("gemini decode: %w", decodeErr)
	}

	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", &UpstreamError{Status: resp.StatusCode, Message: "prompt blocked: " + out.PromptFeedback.BlockReason}
	}
	if len(out.Candidates) == 0 {
		return "", ErrEmptyDraft
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
