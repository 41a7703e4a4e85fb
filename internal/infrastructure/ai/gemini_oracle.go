package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// geminiOracle completes text with Google's Gemini API.
type geminiOracle struct {
	client *genai.Client
	model  domain.ModelDefinition
}

func newGeminiOracle(ctx context.Context, model domain.ModelDefinition, apiKey string) (*geminiOracle, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if model.ModelID == "" {
		model.ModelID = "gemini-2.0-flash"
	}
	return &geminiOracle{client: client, model: model}, nil
}

func (g *geminiOracle) Name() string {
	return g.model.Name
}

func (g *geminiOracle) Complete(ctx context.Context, req ports.OracleRequest) (string, error) {
	const op = "oracle.gemini"

	contents := make([]*genai.Content, 0, 1+2*len(req.Examples))
	for _, ex := range req.Examples {
		contents = append(contents,
			genai.NewContentFromText(ex.Input, genai.RoleUser),
			genai.NewContentFromText(ex.Output, genai.RoleModel),
		)
	}
	contents = append(contents, genai.NewContentFromText(req.Input, genai.RoleUser))

	config := &genai.GenerateContentConfig{}
	if req.Instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.Instruction, genai.RoleUser)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	maxTokens := req.MaxTokens
	if g.model.MaxTokens > 0 {
		maxTokens = g.model.MaxTokens
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model.ModelID, contents, config)
	if err != nil {
		return "", unavailable(ctx, op, fmt.Errorf("GenAI generate failed: %w", err))
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", domain.Errorf(domain.KindOracleUnavailable, op, "empty response")
	}
	return text, nil
}

var _ ports.TextOracle = (*geminiOracle)(nil)
