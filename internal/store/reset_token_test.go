package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreConsumeOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", 7, time.Minute))

	id, err := s.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	_, err = s.Consume(ctx, "abc")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore().(*memoryStore)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", 7, time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := s.Consume(ctx, "abc")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestNewWithoutAddrUsesMemory(t *testing.T) {
	s, closeFn := New("", "")
	defer closeFn()
	_, ok := s.(*memoryStore)
	assert.True(t, ok)
}
