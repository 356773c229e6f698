package llm

import (
	"fmt"
	"strings"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Factory creates streaming clients with consistent logic
type Factory struct {
	OllamaBaseURL      string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenRouterReferrer string
	OpenRouterTitle    string
}

func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderOllama:
		return NewOllama(f.OllamaBaseURL), nil
	case ProviderOpenAI:
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, f.OpenRouterReferrer, f.OpenRouterTitle), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
