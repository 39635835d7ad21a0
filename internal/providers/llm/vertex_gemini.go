package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

type VertexGemini struct {
	client      *vertexgenai.Client
	modelName   string
	temperature float32
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string, opts ...option.ClientOption) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, modelName: modelName, temperature: 0.7}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) ModelName() string { return v.modelName }

func (v *VertexGemini) GenerateJSON(ctx context.Context, req Request) (string, error) {
	// GenerativeModel carries per-call config, so build one per request
	m := v.client.GenerativeModel(v.modelName)
	m.SetTemperature(v.temperature)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = req.Schema
	if req.System != "" {
		m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(req.System)}}
	}

	resp, err := m.GenerateContent(ctx, vertexgenai.Text(req.Prompt))
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				out.WriteString(string(t))
			}
		}
		break // first candidate only
	}
	if out.Len() == 0 {
		return "", errors.New("empty response from model")
	}
	return CleanJSON(out.String()), nil
}
