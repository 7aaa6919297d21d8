package usecase_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
)

// fakeAssets asset host en memoria que registra subidas y borrados.
type fakeAssets struct {
	mu        sync.Mutex
	seq       int
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (a *fakeAssets) Upload(_ context.Context, filename string, _ []byte) (ports.AssetRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.uploadErr != nil {
		return ports.AssetRef{}, a.uploadErr
	}
	a.seq++
	id := fmt.Sprintf("crochet/%d-%s", a.seq, filename)
	a.uploaded = append(a.uploaded, id)
	return ports.AssetRef{PublicID: id, URL: "https://cdn.test/" + id}, nil
}

func (a *fakeAssets) Delete(_ context.Context, publicID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, publicID)
	return nil
}

// mapCache ProductCache en memoria.
type mapCache struct {
	mu          sync.Mutex
	items       map[string]dto.ProductResponse
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]dto.ProductResponse)}
}

func (c *mapCache) Get(_ context.Context, id string) (*dto.ProductResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *mapCache) Set(_ context.Context, p *dto.ProductResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = *p
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
