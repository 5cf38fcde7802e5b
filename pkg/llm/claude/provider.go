package claude

import (
	"context"
	"fmt"
	"strings"

	"atlas-be/pkg/llm"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 1024

type ClaudeProvider struct {
	client    anthropic.Client
	modelName string
}

// Ensure ClaudeProvider implements LLMProvider
var _ llm.LLMProvider = &ClaudeProvider{}

func NewClaudeProvider(apiKey, modelName string) *ClaudeProvider {
	return &ClaudeProvider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		modelName: modelName,
	}
}

func (p *ClaudeProvider) buildParams(history []llm.Message, opts []llm.Option) anthropic.MessageNewParams {
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

	maxTokens := defaultMaxTokens
	if options.MaxTokens > 0 {
		maxTokens = options.MaxTokens
	}

	// System messages are not part of the messages array in the Anthropic
	// API, they go into the dedicated System field.
	system := options.System
	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, msg := range history {
		content := anthropic.NewTextBlock(msg.Content)
		switch msg.Role {
		case "system":
			if system == "" {
				system = msg.Content
			} else {
				system = system + "\n" + msg.Content
			}
		case "assistant", "model":
			messages = append(messages, anthropic.NewAssistantMessage(content))
		default:
			messages = append(messages, anthropic.NewUserMessage(content))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(options.Temperature),
	}
	if strings.TrimSpace(system) != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	return params
}

func (p *ClaudeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	params := p.buildParams(history, opts)

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}

	return sb.String(), nil
}

func (p *ClaudeProvider) ChatStream(ctx context.Context, history []llm.Message, onDelta func(string), opts ...llm.Option) (string, error) {
	params := p.buildParams(history, opts)

	stream := p.client.Messages.NewStreaming(ctx, params)
	msg := anthropic.Message{}
	var sb strings.Builder

	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return "", err
		}
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok {
				sb.WriteString(text.Text)
				if onDelta != nil {
					onDelta(text.Text)
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("anthropic stream failed: %w", err)
	}

	return sb.String(), nil
}

func (p *ClaudeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	// Reuse Chat for simplicity as most new LLMs are chat-optimized
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
