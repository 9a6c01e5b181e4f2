package drafts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// Input is what a generation backend receives.
type Input struct {
	Image    []byte
	MIMEType string
	Notes    string
}

// Generator turns a project photo and construction notes into prose.
// Implementations make exactly one upstream call per Generate.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

// ErrEmptyDraft is returned when the backend answered without text.
var ErrEmptyDraft = errors.New("generation produced no description")

// UpstreamError carries the generation service's own failure message.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generation service returned status %d", e.Status)
	}
	return e.Message
}

// DataURI encodes data as data:<mime>;base64,<payload>.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

const prompt = `You are an expert content creator specializing in construction projects.

You will use the following information to create a compelling description of the project.

Construction Data: %s

Write a detailed and engaging project description. Focus on the unique aspects of the project, such as design, sustainability, and community impact. Make it captivating for potential clients.`
