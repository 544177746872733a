package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_ReleasesAfterRun(t *testing.T) {
	var held, released bool
	g := NewGuard(func(_ context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
		assert.Equal(t, "fishledger:migrate", key)
		assert.Equal(t, time.Minute, ttl)
		held = true
		return func(context.Context) error { released = true; return nil }, nil
	}, time.Minute)

	err := g.Do(context.Background(), "fishledger:migrate", func(context.Context) error {
		assert.True(t, held)
		assert.False(t, released)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, released)
}

func TestGuard_PropagatesFnError(t *testing.T) {
	boom := errors.New("boom")
	released := false
	g := NewGuard(func(context.Context, string, time.Duration) (ReleaseFunc, error) {
		return func(context.Context) error { released = true; return nil }, nil
	}, time.Second)

	err := g.Do(context.Background(), "k", func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, released)
}

func TestGuard_NotObtained(t *testing.T) {
	g := NewGuard(func(context.Context, string, time.Duration) (ReleaseFunc, error) {
		return nil, ErrNotObtained
	}, time.Second)

	called := false
	err := g.Do(context.Background(), "k", func(context.Context) error { called = true; return nil })

	assert.ErrorIs(t, err, ErrNotObtained)
	assert.False(t, called)
}

func TestLocalGuard(t *testing.T) {
	called := false
	require.NoError(t, NewLocalGuard().Do(context.Background(), "k", func(context.Context) error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
