package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCommandHistoryIsCapped(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: fmt.Sprintf("c%d", i)}))
	}

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	assert.Equal(t, "c5", history[0].Command)
	assert.Equal(t, fmt.Sprintf("c%d", commandHistoryLimit+4), history[len(history)-1].Command)

	other, err := s.FetchCommandHistory("g2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTags(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetTag("g1", Tag{Name: "Rules", Content: "be nice", AuthorID: "u1"}))
	require.NoError(t, s.SetTag("g1", Tag{Name: "faq", Content: "read the rules"}))

	tag, err := s.GetTag("g1", "RULES")
	require.NoError(t, err)
	assert.Equal(t, "be nice", tag.Content)
	assert.False(t, tag.UpdatedAt.IsZero())

	names, err := s.ListTags("g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"faq", "rules"}, names)

	_, err = s.GetTag("g2", "rules")
	assert.ErrorIs(t, err, ErrTagNotFound)

	deleted, err := s.DeleteTag("g1", "rules")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.DeleteTag("g1", "rules")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRecordSync(t *testing.T) {
	s := newTestStorage(t)

	last, err := s.LastSync("global")
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, s.RecordSync("global", 3, "aaa"))
	require.NoError(t, s.RecordSync("guilds/1", 4, "bbb"))
	require.NoError(t, s.RecordSync("global", 2, "ccc"))

	last, err = s.LastSync("global")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 2, last.Count)
	assert.Equal(t, "ccc", last.Hash)

	history, err := s.SyncHistory()
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestConcurrentWritesAreNotLost(t *testing.T) {
	s := newTestStorage(t)

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.RecordSync(fmt.Sprintf("guilds/%d", i), i, "h"))
			assert.NoError(t, s.SetTag("g1", Tag{Name: fmt.Sprintf("t%d", i), Content: "x"}))
		}(i)
	}
	wg.Wait()

	history, err := s.SyncHistory()
	require.NoError(t, err)
	assert.Len(t, history, writers)

	names, err := s.ListTags("g1")
	require.NoError(t, err)
	assert.Len(t, names, writers)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")

	s, err := New(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.SetTag("g1", Tag{Name: "rules", Content: "be nice"}))
	require.NoError(t, s.RecordSync("global", 3, "aaa"))
	require.NoError(t, s.Close())

	s, err = New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tag, err := s.GetTag("g1", "rules")
	require.NoError(t, err)
	assert.Equal(t, "be nice", tag.Content)

	last, err := s.LastSync("global")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "aaa", last.Hash)
}

func TestCloseReturnsWithLiveContext(t *testing.T) {
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Close() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on the autosave goroutine")
	}
}
