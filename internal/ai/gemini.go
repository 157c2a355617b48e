package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vipbot/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrNoCredential is returned when no API key is available
var ErrNoCredential = errors.New("ai credential is not configured")

// KeySource returns the API key to use when the client is built lazily
type KeySource func(ctx context.Context) (string, error)

// Gemini is a reloadable completion provider.
// Readers load the current client without locking. Reload swaps it; the old
// client is closed once the requests still using it return.
type Gemini struct {
	model   string
	timeout time.Duration
	keys    KeySource
	logger  *zap.Logger

	mu     sync.Mutex
	client atomic.Pointer[clientRef]
	sem    chan struct{}
}

// clientRef counts the requests using a client
type clientRef struct {
	client *genai.Client
	closer io.Closer
	logger *zap.Logger

	mu      sync.Mutex
	refs    int
	retired bool
}

func newClientRef(client *genai.Client, logger *zap.Logger) *clientRef {
	return &clientRef{client: client, closer: client, logger: logger}
}

// acquire fails once the client has been replaced
func (r *clientRef) acquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return false
	}
	r.refs++
	return true
}

func (r *clientRef) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs--
	if r.retired && r.refs == 0 {
		r.close()
	}
}

func (r *clientRef) retire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return
	}
	r.retired = true
	if r.refs == 0 {
		r.close()
	}
}

// close must be called with mu held
func (r *clientRef) close() {
	if err := r.closer.Close(); err != nil {
		r.logger.Warn("Failed to close previous completion client", zap.Error(err))
	}
}

// NewGemini creates a provider for the given model; no client is built until first use
func NewGemini(model string, timeout time.Duration, keys KeySource, logger *zap.Logger) *Gemini {
	return &Gemini{
		model:   model,
		timeout: timeout,
		keys:    keys,
		logger:  logger,
		sem:     make(chan struct{}, 4), // concurrent requests
	}
}

// Complete sends the turns and returns the model answer
func (g *Gemini) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	system, parts := splitTurns(turns)
	if len(parts) == 0 {
		return "", fmt.Errorf("complete: no user turn")
	}

	ref, err := g.current(ctx)
	if err != nil {
		return "", err
	}
	defer ref.release()

	select {
	case g.sem <- struct{}{}:
		defer func() { <-g.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	model := ref.client.GenerativeModel(g.model)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(2048)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates")
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

// Reload replaces the client with one built from apiKey. An empty key drops the client.
func (g *Gemini) Reload(ctx context.Context, apiKey string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		g.swap(nil)
		return nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.swap(newClientRef(client, g.logger))
	g.logger.Info("Completion client reloaded", zap.String("model", g.model))
	return nil
}

// Close releases the current client after in-flight requests finish
func (g *Gemini) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.swap(nil)
	return nil
}

// current returns the active client, building it on first use. The caller
// must release it.
func (g *Gemini) current(ctx context.Context) (*clientRef, error) {
	for {
		if ref := g.client.Load(); ref != nil {
			if ref.acquire() {
				return ref, nil
			}
			// replaced between Load and acquire; the successor is already stored
			continue
		}
		if err := g.build(ctx); err != nil {
			return nil, err
		}
	}
}

func (g *Gemini) build(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client.Load() != nil {
		return nil
	}

	if g.keys == nil {
		return ErrNoCredential
	}
	key, err := g.keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to read ai credential: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrNoCredential
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client.Store(newClientRef(client, g.logger))
	return nil
}

// swap must be called with mu held
func (g *Gemini) swap(next *clientRef) {
	if old := g.client.Swap(next); old != nil {
		old.retire()
	}
}

// splitTurns joins system turns into one instruction and maps user turns to parts
func splitTurns(turns []domain.Turn) (string, []genai.Part) {
	var (
		system []string
		parts  []genai.Part
	)
	for _, t := range turns {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		switch t.Role {
		case domain.RoleSystem:
			system = append(system, text)
		default:
			parts = append(parts, genai.Text(text))
		}
	}
	return strings.Join(system, "\n\n"), parts
}

func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.WriteString(string(text))
			}
		}
	}
	return result.String()
}
