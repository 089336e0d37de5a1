// Package embedding provides semantic text embeddings used by the skill
// matcher when string similarity is not enough.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const defaultModel = "text-embedding-004"

// Provider produces one embedding vector per input text.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiProvider backs Provider with the Gemini embedding API.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a provider configured for the Gemini API backend.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &GeminiProvider{client: client, modelName: model}, nil
}

// Embed returns one vector per input text, in input order.
func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("embedding provider is not initialized")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.modelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding api returned %d vectors for %d inputs", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, errors.New("embedding api returned an empty vector")
		}
		vectors = append(vectors, emb.Values)
	}

	return vectors, nil
}

// Model returns the embedding model identifier.
func (p *GeminiProvider) Model() string {
	if p == nil {
		return ""
	}
	return p.modelName
}

// Cosine returns the cosine similarity of two vectors, 0 when either is empty
// or lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var (
	sharedMu       sync.Mutex
	sharedOnce     map[string]*sync.Once
	sharedProvider map[string]*GeminiProvider
	sharedErr      map[string]error
)

// LoadShared returns a process-wide provider for the given key and model,
// creating it at most once. Concurrent scoring requests share the same client.
func LoadShared(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	key := apiKey + "\x00" + model

	sharedMu.Lock()
	if sharedOnce == nil {
		sharedOnce = make(map[string]*sync.Once)
		sharedProvider = make(map[string]*GeminiProvider)
		sharedErr = make(map[string]error)
	}
	once, ok := sharedOnce[key]
	if !ok {
		once = &sync.Once{}
		sharedOnce[key] = once
	}
	sharedMu.Unlock()

	once.Do(func() {
		provider, err := NewGeminiProvider(ctx, apiKey, model)
		sharedMu.Lock()
		sharedProvider[key] = provider
		sharedErr[key] = err
		sharedMu.Unlock()
	})

	sharedMu.Lock()
	defer sharedMu.Unlock()
	return sharedProvider[key], sharedErr[key]
}
