package gemini

import "github.com/adityavardhansharma/ai-mock-interview/internal/llm"

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-flash"
)

// Config comes from GEMINI_API_KEY, GEMINI_MODEL and GEMINI_BASE_URL.
type Config = llm.Settings

func NewConfig() (*Config, error) {
	return llm.SettingsFromEnv("GEMINI", defaultModel)
}

func init() {
	llm.Register(providerName, func() (llm.Provider, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		return NewClient(config)
	})
}
