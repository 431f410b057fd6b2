package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"toxedit/internal/models"
)

// OpenAI implements Generator over the OpenAI chat-completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a generator using the given API key and model.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	if model == "" {
		model = openai.GPT4oMini
		slog.Warn("model not configured, defaulting", "model", model)
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}, nil
}

// complete runs one zero-temperature chat completion and returns the raw text.
func (o *OpenAI) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoOutput
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) GeneratePatch(ctx context.Context, record models.Record, instruction, inci string) ([]models.PatchOperation, error) {
	system, user := buildPatchPrompts(record, instruction, inci)
	out, err := o.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	clean := CleanJSONOutput(out)
	var ops []models.PatchOperation
	if err := json.Unmarshal([]byte(clean), &ops); err != nil {
		// Some models return a single operation object instead of an array.
		var single models.PatchOperation
		if err2 := json.Unmarshal([]byte(clean), &single); err2 != nil {
			return nil, fmt.Errorf("%w: parse patch output: %v", ErrMalformedOutput, err)
		}
		ops = []models.PatchOperation{single}
	}
	slog.Debug("generated patch operations", "count", len(ops), "inci", inci)
	return ops, nil
}

func (o *OpenAI) GenerateFullUpdate(ctx context.Context, record models.Record, instruction, inci string) (map[string]any, error) {
	system, user := buildFullUpdatePrompts(record, instruction, inci)
	out, err := o.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var updates map[string]any
	if err := json.Unmarshal([]byte(CleanJSONOutput(out)), &updates); err != nil {
		return nil, fmt.Errorf("%w: parse full update output: %v", ErrMalformedOutput, err)
	}
	return updates, nil
}

func (o *OpenAI) ExtractPayloads(ctx context.Context, rawText string) (map[string]map[string]any, error) {
	out, err := o.complete(ctx, extractSystemPrompt, rawText)
	if err != nil {
		return nil, err
	}

	var parsed map[string]map[string]any
	if err := json.Unmarshal([]byte(CleanJSONOutput(out)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse extraction output: %v", ErrMalformedOutput, err)
	}
	payloads := make(map[string]map[string]any, len(parsed))
	for field, p := range parsed {
		if len(p) > 0 {
			payloads[field] = p
		}
	}
	return payloads, nil
}

func (o *OpenAI) ClassifyAmbiguous(ctx context.Context, instruction string) (string, error) {
	return o.complete(ctx, classifySystemPrompt, instruction)
}
