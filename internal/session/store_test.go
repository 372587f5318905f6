package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/raphaelgruber/voicebridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrompt = "You are a helpful phone assistant."

func TestGetOrCreateSeedsSystemMessage(t *testing.T) {
	store := NewStore(testPrompt)

	sess, created := store.GetOrCreate("CA123")
	require.True(t, created, "first lookup should create the session")
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, models.RoleSystem, sess.Messages[0].Role)
	assert.Equal(t, testPrompt, sess.Messages[0].Content)

	again, created := store.GetOrCreate("CA123")
	assert.False(t, created, "second lookup must not re-create")
	assert.Same(t, sess, again)
	assert.Equal(t, 1, store.Len())
}

func TestAppendPreservesOrder(t *testing.T) {
	store := NewStore(testPrompt)
	store.GetOrCreate("CA123")

	store.Append("CA123", models.RoleUser, "I need help")
	store.Append("CA123", models.RoleAssistant, "Sure, what do you need?")

	msgs, ok := store.Transcript("CA123")
	require.True(t, ok)
	require.Len(t, msgs, 3)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, models.RoleUser, msgs[1].Role)
	assert.Equal(t, "I need help", msgs[1].Content)
	assert.Equal(t, models.RoleAssistant, msgs[2].Role)
}

func TestAppendUnknownSIDIsNoop(t *testing.T) {
	store := NewStore(testPrompt)

	store.Append("CA404", models.RoleUser, "hello?")

	assert.Equal(t, 0, store.Len())
	_, ok := store.Transcript("CA404")
	assert.False(t, ok)
}

func TestTranscriptReturnsCopy(t *testing.T) {
	store := NewStore(testPrompt)
	store.GetOrCreate("CA123")

	msgs, ok := store.Transcript("CA123")
	require.True(t, ok)
	msgs[0].Content = "mutated"

	fresh, _ := store.Transcript("CA123")
	assert.Equal(t, testPrompt, fresh[0].Content)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewStore(testPrompt)
	store.GetOrCreate("CA123")

	store.Delete("CA123")
	assert.Equal(t, 0, store.Len())

	// Deleting again must not panic or change anything.
	store.Delete("CA123")
	assert.Equal(t, 0, store.Len())
}

func TestDeletedSIDIsTreatedAsNew(t *testing.T) {
	store := NewStore(testPrompt)
	store.GetOrCreate("CA123")
	store.Append("CA123", models.RoleUser, "first call")
	store.Delete("CA123")

	sess, created := store.GetOrCreate("CA123")
	assert.True(t, created, "a deleted SID starts over as brand-new")
	assert.Len(t, sess.Messages, 1)
}

func TestClear(t *testing.T) {
	store := NewStore(testPrompt)
	for i := 0; i < 5; i++ {
		store.GetOrCreate(fmt.Sprintf("CA%d", i))
	}
	require.Equal(t, 5, store.Len())

	store.Clear()
	assert.Equal(t, 0, store.Len())
}

func TestConcurrentDisjointCalls(t *testing.T) {
	store := NewStore(testPrompt)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("CA%03d", i)
			store.GetOrCreate(sid)
			store.Append(sid, models.RoleUser, "hi")
			store.Append(sid, models.RoleAssistant, "hello")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
	msgs, ok := store.Transcript("CA007")
	require.True(t, ok)
	assert.Len(t, msgs, 3)
}
