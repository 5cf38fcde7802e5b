package openrouter

import (
	"context"
	"fmt"

	"atlas-be/pkg/llm"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenRouter exposes an OpenAI-compatible API, so we drive it with the
// OpenAI SDK pointed at the OpenRouter base URL.
type OpenRouterProvider struct {
	client    openai.Client
	modelName string
}

// Ensure OpenRouterProvider implements LLMProvider
var _ llm.LLMProvider = &OpenRouterProvider{}

func NewOpenRouterProvider(apiKey, baseURL, modelName string) *OpenRouterProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenRouterProvider{
		client:    openai.NewClient(opts...),
		modelName: modelName,
	}
}

func (p *OpenRouterProvider) buildParams(history []llm.Message, opts []llm.Option) openai.ChatCompletionNewParams {
	options := &llm.Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}

	model := p.modelName
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if options.System != "" {
		messages = append(messages, openai.SystemMessage(options.System))
	}
	for _, msg := range history {
		switch msg.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant", "model":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(options.Temperature),
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}

	return params
}

func (p *OpenRouterProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	params := p.buildParams(history, opts)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenRouterProvider) ChatStream(ctx context.Context, history []llm.Message, onDelta func(string), opts ...llm.Option) (string, error) {
	params := p.buildParams(history, opts)

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 {
			delta := chunk.Choices[0].Delta.Content
			if delta != "" && onDelta != nil {
				onDelta(delta)
			}
		}
	}

	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("openrouter stream failed: %w", err)
	}
	if len(acc.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	return acc.Choices[0].Message.Content, nil
}

func (p *OpenRouterProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
