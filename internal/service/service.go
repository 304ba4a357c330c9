// Package service holds the per-session orchestrators behind the HTTP API.
package service

import (
	"context"
	"errors"

	"github.com/timmy/epigraph/internal/domain"
)

var (
	// ErrBusy is returned while a previous analysis or chat call is still running.
	ErrBusy = errors.New("operation already in progress")

	// ErrSignInRequired is returned when a comment could not be written.
	ErrSignInRequired = errors.New("sign in required")
)

// User-facing failure messages.
const (
	AnalysisFailedMessage = "Analysis failed. Please try again."
	SignInRequiredMessage = "You need to sign in to comment."
)

// AIGateway is the vision and chat model used by the orchestrators.
type AIGateway interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*domain.AnalysisResult, error)
	Chat(ctx context.Context, message string, history []domain.ChatMessage) (string, error)
}

// Persistence is the backend holding scripts, translations and comments.
type Persistence interface {
	ListScripts(ctx context.Context) ([]domain.AncientScript, error)
	FindScriptByNameFragment(ctx context.Context, fragment string) (*domain.AncientScript, error)
	CreateTranslation(ctx context.Context, t *domain.Translation) (string, error)
	ListPublicTranslations(ctx context.Context, limit int) ([]domain.Translation, error)
	ListComments(ctx context.Context, translationID string) ([]domain.Comment, error)
	CreateComment(ctx context.Context, translationID, content string) error
	CurrentUserID(ctx context.Context) (*string, error)
}

// ImageArchiver keeps a copy of analyzed images outside the database.
type ImageArchiver interface {
	Put(ctx context.Context, data []byte, mimeType string) (string, error)
}
