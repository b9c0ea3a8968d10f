// cmd/fx/gateway_fx/init.go
package gateway_fx

import (
	"log"
	"os"
	"strings"

	"compass/pkg/utils"

	"go.uber.org/fx"
)

var Module = fx.Provide(
	ProvideLLMClient,
	ProvideEmbeddingClient)

// GatewayConfig holds configuration for the model gateway clients.
type GatewayConfig struct {
	Provider string
	APIKey   string
	Model    string
}

// ProvideLLMClient creates the chat/conversion model client based on
// environment variables.
func ProvideLLMClient() (utils.LLMClientInterface, error) {
	config := getGatewayConfig()

	log.Printf("Initializing %s model client with model: %s", config.Provider, config.Model)

	return utils.NewLLMClient(config.Provider, config.APIKey, config.Model)
}

// ProvideEmbeddingClient creates the embedding client for community search.
// The hash provider keeps local development working without any API key.
func ProvideEmbeddingClient() (utils.EmbeddingClientInterface, error) {
	provider := getEnvWithDefault("EMBEDDING_PROVIDER", "hash")

	log.Printf("Initializing %s embedding client", provider)

	return utils.NewEmbeddingClient(provider, os.Getenv("OPENAI_API_KEY"))
}

// getGatewayConfig reads model gateway configuration from environment variables.
func getGatewayConfig() GatewayConfig {
	provider := getEnvWithDefault("LLM_PROVIDER", "gemini")

	var apiKey, model string

	switch strings.ToLower(provider) {
	case "openai":
		apiKey = os.Getenv("OPENAI_API_KEY")
		model = getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini")
		if apiKey == "" {
			log.Fatal("OPENAI_API_KEY is required when using OpenAI provider")
		}
	case "gemini":
		apiKey = os.Getenv("GEMINI_API_KEY")
		model = getEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash")
		if apiKey == "" {
			log.Fatal("GEMINI_API_KEY is required when using Gemini provider")
		}
	}

	return GatewayConfig{
		Provider: provider,
		APIKey:   apiKey,
		Model:    model,
	}
}

// getEnvWithDefault returns environment variable or default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
