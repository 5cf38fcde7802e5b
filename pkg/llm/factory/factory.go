package factory

import (
	"fmt"

	"atlas-be/pkg/llm"
	"atlas-be/pkg/llm/claude"
	"atlas-be/pkg/llm/openrouter"
)

func NewLLMProvider(providerType, apiKey, modelName, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "claude":
		return claude.NewClaudeProvider(apiKey, modelName), nil
	case "openrouter":
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1" // Default
		}
		return openrouter.NewOpenRouterProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
