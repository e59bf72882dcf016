package engine

import (
	"net/http"
	"sync"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// KeyPool rotates relevance-classification calls across one LLM client per
// API key. Groq free-tier limits are per key, so spreading a ranking run's
// batches over the pool avoids stalling on a single rate-limited key.
type KeyPool struct {
	mu      sync.Mutex
	clients []*llm.Client
	next    int
}

// NewKeyPool builds a client per key. Empty keys are skipped; returns nil
// when no usable keys remain, which disables LLM classification entirely.
func NewKeyPool(apiBase, model string, keys []string, temperature float64, maxTokens int) *KeyPool {
	p := &KeyPool{}
	for _, key := range keys {
		if key == "" {
			continue
		}
		p.clients = append(p.clients, llm.NewClient(apiBase, key, model,
			llm.WithMaxTokens(maxTokens),
			llm.WithTemperature(temperature),
			llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		))
	}
	if len(p.clients) == 0 {
		return nil
	}
	return p
}

// Next returns the next client in round-robin order.
func (p *KeyPool) Next() *llm.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.clients[p.next%len(p.clients)]
	p.next++
	return c
}

// Size reports the number of usable keys.
func (p *KeyPool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.clients)
}
