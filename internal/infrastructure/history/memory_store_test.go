package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvis-go/internal/domain"
)

func sampleEntry(id string) domain.HistoryEntry {
	action := domain.StructuredAction{Action: domain.ActionPing, Parameters: domain.Params{"hostname": "example.org"}, Confidence: 0.9}
	return domain.HistoryEntry{
		ID:          id,
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Utterance:   "ping example.org",
		SubCommands: []domain.SubCommand{{Tag: domain.TagAdvancedSystem, Payload: "ping example.org"}},
		Results: []domain.ExecutionResult{{
			SubCommand: domain.SubCommand{Tag: domain.TagAdvancedSystem, Payload: "ping example.org"},
			Outcome:    domain.Success("reachable"),
			Action:     &action,
		}},
	}
}

func TestMemoryStoreRecordListClear(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Record(sampleEntry("a")))
	require.NoError(t, store.Record(sampleEntry("b")))
	assert.ErrorIs(t, store.Record(domain.HistoryEntry{}), ErrMissingID)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	got, ok := store.Get("b")
	require.True(t, ok)
	assert.Equal(t, "ping example.org", got.Utterance)

	assert.Equal(t, 2, store.Clear())
	assert.Empty(t, store.List())
	_, ok = store.Get("a")
	assert.False(t, ok)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	entry := sampleEntry("a")
	require.NoError(t, store.Record(entry))

	entry.SubCommands[0].Payload = "mutated by caller"
	entry.Results[0].Action.Parameters["hostname"] = "evil.example"

	listed := store.List()
	listed[0].Results[0].Outcome.Output = "mutated by reader"

	got, _ := store.Get("a")
	assert.Equal(t, "ping example.org", got.SubCommands[0].Payload)
	assert.Equal(t, "example.org", got.Results[0].Action.Parameters["hostname"])
	assert.Equal(t, "reachable", got.Results[0].Outcome.Output)
}

func TestMemoryStoreConcurrentRecord(t *testing.T) {
	store := NewMemoryStore()
	const writers, perWriter = 16, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = store.Record(sampleEntry(fmt.Sprintf("%d-%d", w, i)))
				_ = store.List()
			}
		}(w)
	}
	wg.Wait()

	list := store.List()
	require.Len(t, list, writers*perWriter)
	seen := make(map[string]bool, len(list))
	for _, entry := range list {
		assert.False(t, seen[entry.ID], "duplicate %s", entry.ID)
		seen[entry.ID] = true
		assert.Len(t, entry.Results, 1)
		assert.Len(t, entry.SubCommands, 1)
	}
}
