// Package checkpoint persists immutable conversation state snapshots.
// One checkpoint is written per turn; each carries a reference to its
// parent so accidental double submission of a turn is detectable from
// the chain.
package checkpoint

import (
	"context"
	"time"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
)

// Checkpoint is one immutable snapshot keyed by (user_id, chat_id).
type Checkpoint struct {
	ID        string                   `json:"id"`
	ParentID  string                   `json:"parent_id,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	State     *model.ConversationState `json:"state"`
}

// ListOptions narrows a checkpoint listing.
type ListOptions struct {
	// Before keeps only checkpoints created strictly before it. Zero
	// means no bound.
	Before time.Time
	// Limit caps the number of returned checkpoints, newest first. Zero
	// means no cap.
	Limit int
}

// Store is the checkpoint persistence capability. Implementations must
// support safe concurrent use across conversations; writes within one
// conversation are last-write-wins.
type Store interface {
	// GetLatest returns the newest checkpoint, or nil when the
	// conversation has none yet.
	GetLatest(ctx context.Context, userID, chatID string) (*Checkpoint, error)
	// Put appends a snapshot and returns its reference.
	Put(ctx context.Context, userID, chatID string, state *model.ConversationState, parentRef string) (string, error)
	// List returns checkpoints newest first, narrowed by opts.
	List(ctx context.Context, userID, chatID string, opts ListOptions) ([]*Checkpoint, error)
}
