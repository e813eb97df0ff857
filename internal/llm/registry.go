package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Factory builds a provider from the process environment.
type Factory func() (Provider, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a provider available under name. Providers register from
// their package init; registering the same name twice is a programming error.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("llm: Register factory is nil for " + name)
	}
	if _, dup := factories[name]; dup {
		panic("llm: Register called twice for provider " + name)
	}
	factories[name] = factory
}

func unregister(name string) {
	registryMu.Lock()
	delete(factories, name)
	registryMu.Unlock()
}

// Open builds the provider registered under name.
func Open(name string) (Provider, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q (available: %s)", name, strings.Join(Registered(), ", "))
	}
	return factory()
}

// Registered lists provider names in sorted order.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Settings are the connection details every provider reads as
// <PREFIX>_API_KEY, <PREFIX>_MODEL and <PREFIX>_BASE_URL.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// SettingsFromEnv loads Settings for prefix. The API key is required.
func SettingsFromEnv(prefix, defaultModel string) (*Settings, error) {
	s := &Settings{
		APIKey:  strings.TrimSpace(os.Getenv(prefix + "_API_KEY")),
		Model:   strings.TrimSpace(os.Getenv(prefix + "_MODEL")),
		BaseURL: strings.TrimSpace(os.Getenv(prefix + "_BASE_URL")),
	}
	if s.APIKey == "" {
		return nil, fmt.Errorf("%s_API_KEY environment variable is required", prefix)
	}
	if s.Model == "" {
		s.Model = defaultModel
	}
	return s, nil
}
