package openai

import "github.com/adityavardhansharma/ai-mock-interview/internal/llm"

const (
	providerName = "openai"
	defaultModel = "gpt-4o-mini"
)

// Config targets any OpenAI-compatible chat completion endpoint via
// OPENAI_API_KEY, OPENAI_MODEL and OPENAI_BASE_URL.
type Config = llm.Settings

func NewConfig() (*Config, error) {
	return llm.SettingsFromEnv("OPENAI", defaultModel)
}

func init() {
	llm.Register(providerName, func() (llm.Provider, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		return NewClient(config), nil
	})
}
