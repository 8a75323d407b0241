package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
)

func TestMemoryStoreLatestAndChaining(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cp, err := store.GetLatest(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Nil(t, cp)

	first, err := store.Put(ctx, "u1", "c1", &model.ConversationState{UserID: "u1"}, "")
	require.NoError(t, err)
	second, err := store.Put(ctx, "u1", "c1", &model.ConversationState{UserID: "u1"}, first)
	require.NoError(t, err)

	cp, err = store.GetLatest(ctx, "u1", "c1")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, second, cp.ID)
	assert.Equal(t, first, cp.ParentID)
}

func TestMemoryStorePutClonesState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	state := &model.ConversationState{UserID: "u1", SafeTools: []string{"CalendarTool"}}
	_, err := store.Put(ctx, "u1", "c1", state, "")
	require.NoError(t, err)

	state.SafeTools[0] = "mutated"

	cp, err := store.GetLatest(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "CalendarTool", cp.State.SafeTools[0])
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var refs []string
	parent := ""
	for i := 0; i < 3; i++ {
		ref, err := store.Put(ctx, "u1", "c1", &model.ConversationState{}, parent)
		require.NoError(t, err)
		refs = append(refs, ref)
		parent = ref
	}

	list, err := store.List(ctx, "u1", "c1", ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, refs[2], list[0].ID)
	assert.Equal(t, refs[0], list[2].ID)

	limited, err := store.List(ctx, "u1", "c1", ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := store.List(ctx, "u1", "c1", ListOptions{Before: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreConversationsIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Put(ctx, "u1", "c1", &model.ConversationState{ChatID: "c1"}, "")
	require.NoError(t, err)

	cp, err := store.GetLatest(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.Nil(t, cp)
}
