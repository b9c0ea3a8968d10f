package utils

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingClientInterface turns free text into a vector for similarity
// lookups over published itineraries.
type EmbeddingClientInterface interface {
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
}

type OpenAIEmbeddingClient struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbeddingClient(apiKey string) *OpenAIEmbeddingClient {
	return &OpenAIEmbeddingClient{
		client: openai.NewClient(apiKey),
		model:  openai.SmallEmbedding3,
	}
}

func (c *OpenAIEmbeddingClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return pgvector.Vector{}, classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, ErrEmptyResponse
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}

// HashEmbeddingClient is a deterministic, offline fallback. Word hashes are
// spread across the vector and normalized; good enough for rough similarity
// when no embedding API key is configured.
type HashEmbeddingClient struct{}

func NewHashEmbeddingClient() *HashEmbeddingClient { return &HashEmbeddingClient{} }

const embeddingDimensions = 1536

func (c *HashEmbeddingClient) GetEmbedding(_ context.Context, text string) (pgvector.Vector, error) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	vector := make([]float32, embeddingDimensions)

	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		hash := h.Sum32()
		for i := 0; i < embeddingDimensions; i++ {
			vector[i] += float32(math.Sin(float64(hash+uint32(i))) * 0.1)
		}
	}

	var magnitude float32
	for _, v := range vector {
		magnitude += v * v
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))
	if magnitude > 0 {
		for i := range vector {
			vector[i] /= magnitude
		}
	}

	return pgvector.NewVector(vector), nil
}

// NewEmbeddingClient picks OpenAI embeddings when a key is present and the
// hash fallback otherwise.
func NewEmbeddingClient(provider, apiKey string) (EmbeddingClientInterface, error) {
	switch strings.ToLower(provider) {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for openai embeddings")
		}
		return NewOpenAIEmbeddingClient(apiKey), nil
	case "hash", "":
		return NewHashEmbeddingClient(), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s. Use 'openai' or 'hash'", provider)
	}
}
