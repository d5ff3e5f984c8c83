package identity

import "sync"

// StaticProvider resolves from a fixed in-memory credential list. Used for
// the ops break-glass token; the interface keeps callers agnostic.
type StaticProvider struct {
	mu     sync.RWMutex
	actors map[string]Actor
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{actors: make(map[string]Actor)}
}

func (p *StaticProvider) Register(credential string, actor Actor) {
	if credential == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actors[credential] = actor
}

func (p *StaticProvider) Resolve(credential string) (*Actor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	actor, ok := p.actors[credential]
	if !ok {
		return nil, ErrUnknownCredential
	}
	return &actor, nil
}
