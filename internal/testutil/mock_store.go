// mock_store.go - Test doubles for the layout store, oracle and publisher
package testutil

import (
	"context"
	"sync"

	"github.com/panel-layout/backend/internal/broadcast"
	"github.com/panel-layout/backend/internal/models"
	"github.com/panel-layout/backend/internal/storage"
)

// MockStore wraps an auto-creating MemoryStore and lets tests inject write
// failures and count calls.
type MockStore struct {
	*storage.MemoryStore

	mu sync.Mutex
	// WriteErr, when set, is returned by ReplacePanels instead of writing.
	WriteErr error
	// FailWrites lists 1-based ReplacePanels call numbers that fail with WriteErr.
	// Empty means every call fails while WriteErr is set.
	FailWrites   map[int]bool
	ReplaceCalls int
	LastMeta     storage.ReplaceMeta
}

// NewMockStore creates a MockStore.
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: storage.NewMemoryStore(storage.Options{AutoCreate: true})}
}

// Seed replaces a project's panels without counting as a call.
func (m *MockStore) Seed(projectID string, panels []models.Panel) *models.Layout {
	l, err := m.MemoryStore.ReplacePanels(context.Background(), projectID, panels, storage.ReplaceMeta{Source: "seed"})
	if err != nil {
		panic(err)
	}
	return l
}

// ReplacePanels implements storage.Store.
func (m *MockStore) ReplacePanels(ctx context.Context, projectID string, panels []models.Panel, meta storage.ReplaceMeta) (*models.Layout, error) {
	m.mu.Lock()
	m.ReplaceCalls++
	m.LastMeta = meta
	call := m.ReplaceCalls
	err := m.WriteErr
	fail := err != nil && (len(m.FailWrites) == 0 || m.FailWrites[call])
	m.mu.Unlock()

	if fail {
		return nil, err
	}
	return m.MemoryStore.ReplacePanels(ctx, projectID, panels, meta)
}

// Calls returns the number of ReplacePanels calls.
func (m *MockStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReplaceCalls
}

// FakeOracle returns a canned completion and records prompts.
type FakeOracle struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Prompts  []string
	Systems  []string
	MaxToken int
}

// Complete implements oracle.Oracle.
func (f *FakeOracle) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Systems = append(f.Systems, systemPrompt)
	f.Prompts = append(f.Prompts, userPrompt)
	f.MaxToken = maxTokens
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

// LastPrompt returns the most recent user prompt.
func (f *FakeOracle) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1]
}

// RecordingPublisher captures published events.
type RecordingPublisher struct {
	mu     sync.Mutex
	Err    error
	Block  chan struct{} // when set, Publish waits on it or the context
	events []PublishedEvent
}

// PublishedEvent is one captured Publish call.
type PublishedEvent struct {
	ChannelID string
	Event     broadcast.Event
}

// Publish implements broadcast.Publisher.
func (p *RecordingPublisher) Publish(ctx context.Context, channelID string, ev broadcast.Event) error {
	if p.Block != nil {
		select {
		case <-p.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{ChannelID: channelID, Event: ev})
	return p.Err
}

// Events returns a copy of the captured events.
func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}
