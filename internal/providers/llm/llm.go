package llm

import (
	"context"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

// Request is one schema-constrained generation call.
type Request struct {
	Operation string // used for breaker names and logs, ex: "generate_questions"
	System    string
	Prompt    string
	Schema    *vertexgenai.Schema
}

type Provider interface {
	// GenerateJSON returns the raw JSON text produced for req.Schema.
	GenerateJSON(ctx context.Context, req Request) (string, error)
	Close() error
}

// CleanJSON strips markdown code fences some models wrap around JSON output.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
