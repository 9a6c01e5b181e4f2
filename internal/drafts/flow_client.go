package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FlowClient talks to a generation flow endpoint that accepts
// {imageDataUri, constructionData} and answers {projectDescription}.
type FlowClient struct {
	URL  string
	HTTP *http.Client
}

func NewFlowClient(url string, timeout time.Duration) *FlowClient {
	return &FlowClient{
		URL:  url,
		HTTP: &http.Client{Timeout: timeout},
	}
}

type flowRequest struct {
	ImageDataURI     string `json:"imageDataUri"`
	ConstructionData string `json:"constructionData"`
}

type flowResponse struct {
	ProjectDescription string `json:"projectDescription"`
	Error              string `json:"error,omitempty"`
	Message            string `json:"message,omitempty"`
}

func (c *FlowClient) Generate(ctx context.Context, in Input) (string, error) {
	b, err := json.Marshal(flowRequest{
		ImageDataURI:     DataURI(in.MIMEType, in.Image),
		ConstructionData: in.Notes,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("flow request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("flow call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("flow read: %w", err)
	}

	var out flowResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode >= 400 {
		msg := out.Error
		if msg == "" {
			msg = out.Message
		}
		if msg == "" && decodeErr != nil {
			msg = string(bytes.TrimSpace(body))
		}
		return "", &UpstreamError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("flow decode: %w", decodeErr)
	}
	return out.ProjectDescription, nil
}
