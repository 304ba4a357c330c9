package service

import (
	"context"
	"strings"
	"sync"

	"github.com/timmy/epigraph/internal/domain"
	"github.com/timmy/epigraph/internal/logger"
)

// FeedSnapshot is the visible state of a FeedOrchestrator.
type FeedSnapshot struct {
	Translations []domain.Translation `json:"translations"`
	SelectedID   string               `json:"selected_id,omitempty"`
	Comments     []domain.Comment     `json:"comments"`
	Draft        string               `json:"draft,omitempty"`
}

// FeedOrchestrator shows recent public translations and the comments of one
// selected translation. Its operations are serialized.
type FeedOrchestrator struct {
	store Persistence
	limit int

	mu           sync.Mutex
	loaded       bool
	stale        bool
	translations []domain.Translation
	selectedID   string
	comments     []domain.Comment
	draft        string
}

// NewFeedOrchestrator creates a feed that loads up to limit translations.
func NewFeedOrchestrator(store Persistence, limit int) *FeedOrchestrator {
	return &FeedOrchestrator{store: store, limit: limit}
}

// Load fetches the public translations, newest first.
func (o *FeedOrchestrator) Load(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loadLocked(ctx)
}

func (o *FeedOrchestrator) loadLocked(ctx context.Context) error {
	translations, err := o.store.ListPublicTranslations(ctx, o.limit)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to load community feed")
		return err
	}
	o.translations = translations
	o.loaded = true
	o.stale = false
	logger.With(logger.Fields{logger.FieldCount: len(translations)}).Debug(ctx, "Community feed loaded")
	return nil
}

// Invalidate marks the feed for reloading on its next use.
func (o *FeedOrchestrator) Invalidate() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stale = true
}

// Snapshot returns the feed, loading it first when it was never loaded or is stale.
func (o *FeedOrchestrator) Snapshot(ctx context.Context) (FeedSnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.loaded || o.stale {
		if err := o.loadLocked(ctx); err != nil {
			return o.snapshotLocked(), err
		}
	}
	return o.snapshotLocked(), nil
}

// ToggleComments opens the comments of translationID, or closes them when it
// is already open. Opening always fetches the comments fresh.
func (o *FeedOrchestrator) ToggleComments(ctx context.Context, translationID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.selectedID == translationID {
		o.selectedID = ""
		o.comments = nil
		return nil
	}

	o.selectedID = translationID
	o.comments = nil
	comments, err := o.store.ListComments(ctx, translationID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to load comments")
		return err
	}
	o.comments = comments
	return nil
}

// PostComment adds a comment to the open translation.
// Parameters:
//   - ctx: request context carrying the caller's identity.
//   - content: comment text; surrounding whitespace is dropped.
//
// Returns:
//   - error: *domain.ValidationError for blank content or when no translation is
//     open, ErrSignInRequired when the backend rejects the write. The draft is
//     kept on failure and cleared on success.
func (o *FeedOrchestrator) PostComment(ctx context.Context, content string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.draft = content
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return &domain.ValidationError{Field: "content", Reason: "comment is empty"}
	}
	if o.selectedID == "" {
		return &domain.ValidationError{Field: "translation_id", Reason: "no translation selected"}
	}

	if err := o.store.CreateComment(ctx, o.selectedID, trimmed); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Comment rejected")
		return ErrSignInRequired
	}
	o.draft = ""

	comments, err := o.store.ListComments(ctx, o.selectedID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Comment stored but refresh failed")
		return nil
	}
	o.comments = comments
	return nil
}

// snapshotLocked copies the visible state; callers hold mu.
func (o *FeedOrchestrator) snapshotLocked() FeedSnapshot {
	snap := FeedSnapshot{
		Translations: make([]domain.Translation, len(o.translations)),
		SelectedID:   o.selectedID,
		Comments:     make([]domain.Comment, len(o.comments)),
		Draft:        o.draft,
	}
	copy(snap.Translations, o.translations)
	copy(snap.Comments, o.comments)
	return snap
}
