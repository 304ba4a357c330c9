package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/timmy/epigraph/internal/domain"
)

type fakeGateway struct {
	mu sync.Mutex

	result  *domain.AnalysisResult
	err     error
	reply   string
	chatErr error

	// block, when set, holds AnalyzeImage and Chat until closed.
	block   chan struct{}
	started chan struct{}

	analyzeCalls int
	lastMIME     string
	chatCalls    int
	lastMessage  string
	lastHistory  []domain.ChatMessage
}

func (g *fakeGateway) wait() {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
}

func (g *fakeGateway) AnalyzeImage(_ context.Context, _ []byte, mimeType string) (*domain.AnalysisResult, error) {
	g.mu.Lock()
	g.analyzeCalls++
	g.lastMIME = mimeType
	g.mu.Unlock()
	g.wait()
	if g.err != nil {
		return nil, g.err
	}
	r := *g.result
	return &r, nil
}

func (g *fakeGateway) Chat(_ context.Context, message string, history []domain.ChatMessage) (string, error) {
	g.mu.Lock()
	g.chatCalls++
	g.lastMessage = message
	g.lastHistory = history
	g.mu.Unlock()
	g.wait()
	return g.reply, g.chatErr
}

type fakeStore struct {
	mu sync.Mutex

	scripts      []domain.AncientScript
	translations []domain.Translation
	comments     map[string][]domain.Comment
	userID       *string

	findErr    error
	createErr  error
	listErr    error
	commentErr error

	findCalls         int
	listCommentsCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{comments: map[string][]domain.Comment{}}
}

func (s *fakeStore) ListScripts(context.Context) ([]domain.AncientScript, error) {
	return s.scripts, nil
}

func (s *fakeStore) FindScriptByNameFragment(_ context.Context, fragment string) (*domain.AncientScript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, script := range s.scripts {
		if strings.Contains(strings.ToLower(script.Name), strings.ToLower(fragment)) {
			found := script
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateTranslation(_ context.Context, t *domain.Translation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	t.ID = "tr-" + string(rune('a'+len(s.translations)))
	s.translations = append(s.translations, *t)
	return t.ID, nil
}

func (s *fakeStore) ListPublicTranslations(context.Context, int) ([]domain.Translation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.Translation
	for i := len(s.translations) - 1; i >= 0; i-- {
		if s.translations[i].IsPublic {
			out = append(out, s.translations[i])
		}
	}
	return out, nil
}

func (s *fakeStore) ListComments(_ context.Context, translationID string) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCommentsCalls++
	return append([]domain.Comment(nil), s.comments[translationID]...), nil
}

func (s *fakeStore) CreateComment(_ context.Context, translationID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commentErr != nil {
		return s.commentErr
	}
	c := domain.Comment{TranslationID: translationID, Content: content, UserID: s.userID}
	s.comments[translationID] = append([]domain.Comment{c}, s.comments[translationID]...)
	return nil
}

func (s *fakeStore) CurrentUserID(context.Context) (*string, error) {
	return s.userID, nil
}

type fakeArchive struct {
	puts int
	err  error
}

func (a *fakeArchive) Put(context.Context, []byte, string) (string, error) {
	a.puts++
	return "https://cdn.example.com/x.png", a.err
}

var errRemote = errors.New("remote unavailable")

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, G: 150, B: 90, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
