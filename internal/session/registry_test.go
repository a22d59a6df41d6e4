package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	s, err := r.Create("42", "Interview")
	require.NoError(t, err)
	require.NotNil(t, s)

	got, err := r.Get("42")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = r.Get("unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryDuplicateCreate(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	first, err := r.Create("42", "Interview")
	require.NoError(t, err)

	_, err = r.Create("42", "Other topic")
	require.ErrorIs(t, err, ErrAlreadyExists)

	got, err := r.Get("42")
	require.NoError(t, err)
	assert.Same(t, first, got, "failed create must leave the existing session untouched")
	assert.Equal(t, "Interview", got.Topic)
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	_, err := r.Create("42", "Interview")
	require.NoError(t, err)

	r.Remove("42")
	r.Remove("42") // no-op
	r.Remove("never-existed")

	assert.Zero(t, r.Len())

	// Slot is reusable after removal.
	_, err = r.Create("42", "Round two")
	assert.NoError(t, err)
}

func TestRegistryConcurrentCreate(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = r.Create("42", "Interview")
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyExists):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one concurrent create must win")
	assert.Equal(t, callers-1, dup)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	_, err := r.Create("1", "First")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = r.Create("2", "Second")
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].MeetingID, "list is ordered by creation time")
	assert.Equal(t, "2", list[1].MeetingID)
}
