package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/timmy/epigraph/internal/domain"
	"github.com/timmy/epigraph/internal/logger"
	"gorm.io/gorm"
)

// DefaultFeedLimit is the page size used when a caller passes no limit.
const DefaultFeedLimit = 20

// IdentityResolver reports the signed-in user for a request context.
type IdentityResolver interface {
	CurrentUserID(ctx context.Context) (*string, error)
}

// StoreConfig holds write-policy settings for the Store.
type StoreConfig struct {
	// AllowAnonymousComments lets callers without an identity write comments.
	AllowAnonymousComments bool
}

// Store reads and writes scripts, translations and comments.
type Store struct {
	db       *gorm.DB
	identity IdentityResolver
	cfg      StoreConfig
}

// NewStore creates a new Store.
// Parameters:
//   - db: initialized gorm database handle.
//   - identity: resolver for the current user; nil treats every caller as anonymous.
//   - cfg: write-policy settings.
//
// Returns:
//   - *Store: store instance bound to the database.
func NewStore(db *gorm.DB, identity IdentityResolver, cfg StoreConfig) *Store {
	return &Store{db: db, identity: identity, cfg: cfg}
}

// ListScripts returns every cataloged script ordered by name.
func (s *Store) ListScripts(ctx context.Context) ([]domain.AncientScript, error) {
	scripts := []domain.AncientScript{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&scripts).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "list_scripts", Err: err}
	}
	return scripts, nil
}

// FindScriptByNameFragment returns one script whose name contains fragment,
// ignoring case. An empty fragment matches any script.
// Parameters:
//   - ctx: context for cancellation.
//   - fragment: substring to look for; LIKE wildcards are matched literally.
//
// Returns:
//   - *domain.AncientScript: the first matching row, or nil when none matches.
//   - error: *domain.PersistenceError if the query fails.
func (s *Store) FindScriptByNameFragment(ctx context.Context, fragment string) (*domain.AncientScript, error) {
	var scripts []domain.AncientScript
	pattern := "%" + escapeLike(fragment) + "%"
	// SQLite's LOWER only folds ASCII, so non-ASCII names match
	// case-insensitively on postgres alone.
	err := s.db.WithContext(ctx).
		Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern).
		Limit(1).
		Find(&scripts).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "find_script", Err: err}
	}
	if len(scripts) == 0 {
		return nil, nil
	}
	return &scripts[0], nil
}

// CreateTranslation inserts a translation row and returns its id.
// When UserID is unset it is filled from the current identity, or left null.
func (s *Store) CreateTranslation(ctx context.Context, t *domain.Translation) (string, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.UserID == nil {
		userID, err := s.CurrentUserID(ctx)
		if err != nil {
			return "", err
		}
		t.UserID = userID
	}
	if t.AnalysisData == nil {
		t.AnalysisData = domain.AnalysisData{}
	}

	if err := s.db.WithContext(ctx).Omit("Script").Create(t).Error; err != nil {
		return "", &domain.PersistenceError{Op: "create_translation", Err: err}
	}
	return t.ID, nil
}

// ListPublicTranslations returns public translations newest first with their
// script preloaded.
// Parameters:
//   - ctx: context for cancellation.
//   - limit: maximum rows; values <= 0 use DefaultFeedLimit.
//
// Returns:
//   - []domain.Translation: matching rows, empty when there are none.
//   - error: *domain.PersistenceError if the query fails.
func (s *Store) ListPublicTranslations(ctx context.Context, limit int) ([]domain.Translation, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	translations := []domain.Translation{}
	err := s.db.WithContext(ctx).
		Preload("Script").
		Where("is_public = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&translations).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list_public_translations", Err: err}
	}
	return translations, nil
}

// ListComments returns the comments of a translation newest first.
func (s *Store) ListComments(ctx context.Context, translationID string) ([]domain.Comment, error) {
	comments := []domain.Comment{}
	err := s.db.WithContext(ctx).
		Where("translation_id = ?", translationID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list_comments", Err: err}
	}
	return comments, nil
}

// CreateComment appends a comment authored by the current identity.
// Anonymous writes and comments on unknown translations are rejected with
// ErrWriteRejected wrapped in a *domain.PersistenceError.
func (s *Store) CreateComment(ctx context.Context, translationID, content string) error {
	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if userID == nil && !s.cfg.AllowAnonymousComments {
		logger.CtxDebug(ctx, "Anonymous comment rejected: translation_id=%s", translationID)
		return &domain.PersistenceError{Op: "create_comment", Err: domain.ErrWriteRejected}
	}

	var count int64
	err = s.db.WithContext(ctx).
		Model(&domain.Translation{}).
		Where("id = ?", translationID).
		Count(&count).Error
	if err != nil {
		return &domain.PersistenceError{Op: "create_comment", Err: err}
	}
	if count == 0 {
		return &domain.PersistenceError{Op: "create_comment", Err: domain.ErrWriteRejected}
	}

	comment := &domain.Comment{
		ID:            uuid.New().String(),
		TranslationID: translationID,
		UserID:        userID,
		Content:       content,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return &domain.PersistenceError{Op: "create_comment", Err: err}
	}
	return nil
}

// CurrentUserID returns the signed-in user's id, or nil for anonymous callers.
func (s *Store) CurrentUserID(ctx context.Context) (*string, error) {
	if s.identity == nil {
		return nil, nil
	}
	return s.identity.CurrentUserID(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
