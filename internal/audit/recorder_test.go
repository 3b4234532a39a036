package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Append(context.Context, Event) error { return errors.New("disk full") }
func (failingStore) ListRecent(context.Context, Page) ([]Event, int, error) {
	return nil, 0, errors.New("disk full")
}
func (failingStore) ListSuspicious(context.Context, Page) ([]Event, int, error) {
	return nil, 0, errors.New("disk full")
}
func (failingStore) ListByPrincipal(context.Context, uuid.UUID, int) ([]Event, error) {
	return nil, errors.New("disk full")
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, Event) error {
	p.calls++
	return errors.New("broker down")
}

func TestRecordAppendsEvent(t *testing.T) {
	store := NewInMemoryStore()
	rec := NewRecorder(store, WithLogger(slog.Default()))
	id := uuid.New()

	rec.Record(context.Background(), &id, KindLoginFail, "Invalid password attempt", nil)

	events, total, err := store.ListRecent(context.Background(), Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, &id, events[0].PrincipalID)
	assert.Equal(t, "Invalid password attempt", events[0].Detail)
	assert.True(t, events[0].Suspicious)
	assert.False(t, events[0].CreatedAt.IsZero())
}

// A failed audit write is swallowed: the recorder never panics and never
// propagates the failure to the request path.
func TestRecordSwallowsStoreFailure(t *testing.T) {
	rec := NewRecorder(failingStore{}, WithLogger(slog.Default()))
	id := uuid.New()

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), &id, KindLoginSuccess, "ok", nil)
	})
}

func TestRecordSwallowsPublisherFailure(t *testing.T) {
	store := NewInMemoryStore()
	pub := &failingPublisher{}
	rec := NewRecorder(store, WithLogger(slog.Default()), WithPublisher(pub))

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), nil, KindLoginFail, "unknown principal", nil)
	})
	assert.Equal(t, 1, pub.calls)

	// The durable write still happened.
	_, total, err := store.ListRecent(context.Background(), Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
