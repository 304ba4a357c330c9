package repository

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/timmy/epigraph/internal/config"
	"github.com/timmy/epigraph/internal/domain"
)

type stubIdentity struct {
	id  *string
	err error
}

func (s stubIdentity) CurrentUserID(context.Context) (*string, error) {
	return s.id, s.err
}

func strPtr(s string) *string { return &s }

func newTestStore(t *testing.T, identity IdentityResolver, cfg StoreConfig) *Store {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "test.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	scripts := []domain.AncientScript{
		{ID: "s-cun", Name: "Sumerian Cuneiform", Code: "xsux", Period: "3400 BCE", Region: "Mesopotamia"},
		{ID: "s-egy", Name: "Egyptian Hieroglyphs", Code: "egyp", Period: "3200 BCE", Region: "Egypt"},
		{ID: "s-pct", Name: "100% Glyphs", Code: "pct", Period: "-", Region: "-"},
	}
	if err := db.Create(&scripts).Error; err != nil {
		t.Fatalf("seed scripts: %v", err)
	}
	return NewStore(db, identity, cfg)
}

func TestListScriptsOrderedByName(t *testing.T) {
	store := newTestStore(t, nil, StoreConfig{})

	scripts, err := store.ListScripts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"100% Glyphs", "Egyptian Hieroglyphs", "Sumerian Cuneiform"}
	if len(scripts) != len(want) {
		t.Fatalf("got %d scripts, want %d", len(scripts), len(want))
	}
	for i, name := range want {
		if scripts[i].Name != name {
			t.Errorf("scripts[%d] = %q, want %q", i, scripts[i].Name, name)
		}
	}
}

func TestFindScriptByNameFragment(t *testing.T) {
	store := newTestStore(t, nil, StoreConfig{})
	ctx := context.Background()

	tests := []struct {
		name     string
		fragment string
		wantID   string
		wantNone bool
	}{
		{name: "case insensitive", fragment: "cuneiform", wantID: "s-cun"},
		{name: "partial", fragment: "HIERO", wantID: "s-egy"},
		{name: "percent is literal", fragment: "0%", wantID: "s-pct"},
		{name: "underscore is literal", fragment: "Sumerian_Cuneiform", wantNone: true},
		{name: "no match", fragment: "Linear A", wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := store.FindScriptByNameFragment(ctx, tt.fragment)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNone {
				if script != nil {
					t.Fatalf("expected no match, got %q", script.Name)
				}
				return
			}
			if script == nil || script.ID != tt.wantID {
				t.Fatalf("got %+v, want id %q", script, tt.wantID)
			}

			again, err := store.FindScriptByNameFragment(ctx, tt.fragment)
			if err != nil || again == nil || again.ID != script.ID {
				t.Errorf("repeated lookup differed: %+v, %v", again, err)
			}
		})
	}
}

func TestFindScriptByNameFragment_EmptyMatchesAny(t *testing.T) {
	store := newTestStore(t, nil, StoreConfig{})

	script, err := store.FindScriptByNameFragment(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if script == nil {
		t.Fatal("expected an arbitrary script for the empty fragment")
	}
}

func TestCreateTranslationDefaultsUserID(t *testing.T) {
	ctx := context.Background()

	t.Run("signed in", func(t *testing.T) {
		store := newTestStore(t, stubIdentity{id: strPtr("user-7")}, StoreConfig{})
		id, err := store.CreateTranslation(ctx, &domain.Translation{
			ImageURL:        "data:image/png;base64,AAAA",
			TranslatedText:  "hello",
			ConfidenceScore: 50,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var row domain.Translation
		if err := store.db.First(&row, "id = ?", id).Error; err != nil {
			t.Fatalf("reload: %v", err)
		}
		if row.UserID == nil || *row.UserID != "user-7" {
			t.Errorf("user_id = %v, want user-7", row.UserID)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		store := newTestStore(t, nil, StoreConfig{})
		id, err := store.CreateTranslation(ctx, &domain.Translation{ImageURL: "data:,", TranslatedText: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var row domain.Translation
		if err := store.db.First(&row, "id = ?", id).Error; err != nil {
			t.Fatalf("reload: %v", err)
		}
		if row.UserID != nil {
			t.Errorf("user_id = %q, want null", *row.UserID)
		}
	})

	t.Run("identity failure", func(t *testing.T) {
		failure := &domain.PersistenceError{Op: "current_user", Err: errors.New("unreachable")}
		store := newTestStore(t, stubIdentity{err: failure}, StoreConfig{})
		_, err := store.CreateTranslation(ctx, &domain.Translation{ImageURL: "data:,", TranslatedText: "x"})
		if !domain.IsPersistence(err) {
			t.Fatalf("expected PersistenceError, got %v", err)
		}
	})
}

func TestListPublicTranslations(t *testing.T) {
	store := newTestStore(t, nil, StoreConfig{})
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	rows := []domain.Translation{
		{ID: "t-old", ImageURL: "a", TranslatedText: "old", IsPublic: true, ScriptID: strPtr("s-cun"), CreatedAt: base},
		{ID: "t-private", ImageURL: "b", TranslatedText: "private", IsPublic: false, CreatedAt: base.Add(time.Hour)},
		{ID: "t-new", ImageURL: "c", TranslatedText: "new", IsPublic: true, CreatedAt: base.Add(2 * time.Hour)},
		// Same timestamp, inserted in ascending id order.
		{ID: "t-tie-a", ImageURL: "d", TranslatedText: "tie a", IsPublic: true, CreatedAt: base.Add(-time.Hour)},
		{ID: "t-tie-b", ImageURL: "e", TranslatedText: "tie b", IsPublic: true, CreatedAt: base.Add(-time.Hour)},
	}
	for i := range rows {
		if _, err := store.CreateTranslation(ctx, &rows[i]); err != nil {
			t.Fatalf("insert %s: %v", rows[i].ID, err)
		}
	}

	got, err := store.ListPublicTranslations(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"t-new", "t-old", "t-tie-b", "t-tie-a"}
	if ids := translationIDs(got); strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected order: got %v, want %v", ids, want)
	}

	again, err := store.ListPublicTranslations(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a, b := translationIDs(got), translationIDs(again); strings.Join(a, ",") != strings.Join(b, ",") {
		t.Errorf("order changed between calls: %v then %v", a, b)
	}
	if got[1].Script == nil || got[1].Script.Name != "Sumerian Cuneiform" {
		t.Errorf("expected preloaded script, got %+v", got[1].Script)
	}
	if got[0].Script != nil {
		t.Errorf("translation without script should have none, got %+v", got[0].Script)
	}

	limited, err := store.ListPublicTranslations(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "t-new" {
		t.Errorf("limit not applied: %+v", limited)
	}
}

func translationIDs(rows []domain.Translation) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func TestComments(t *testing.T) {
	ctx := context.Background()

	t.Run("signed in writes newest first", func(t *testing.T) {
		store := newTestStore(t, stubIdentity{id: strPtr("user-1")}, StoreConfig{})
		id, err := store.CreateTranslation(ctx, &domain.Translation{ImageURL: "a", TranslatedText: "t", IsPublic: true})
		if err != nil {
			t.Fatalf("insert translation: %v", err)
		}

		if err := store.CreateComment(ctx, id, "first"); err != nil {
			t.Fatalf("first comment: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
		if err := store.CreateComment(ctx, id, "second"); err != nil {
			t.Fatalf("second comment: %v", err)
		}

		comments, err := store.ListComments(ctx, id)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(comments) != 2 || comments[0].Content != "second" || comments[1].Content != "first" {
			t.Fatalf("unexpected comments %+v", comments)
		}
		if comments[0].UserID == nil || *comments[0].UserID != "user-1" {
			t.Errorf("comment user_id = %v", comments[0].UserID)
		}
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		store := newTestStore(t, nil, StoreConfig{})
		id, _ := store.CreateTranslation(ctx, &domain.Translation{ImageURL: "a", TranslatedText: "t"})

		err := store.CreateComment(ctx, id, "hello")
		if !domain.IsPersistence(err) || !errors.Is(err, domain.ErrWriteRejected) {
			t.Fatalf("expected rejected write, got %v", err)
		}
		comments, _ := store.ListComments(ctx, id)
		if len(comments) != 0 {
			t.Errorf("rejected comment was stored")
		}
	})

	t.Run("anonymous allowed by policy", func(t *testing.T) {
		store := newTestStore(t, nil, StoreConfig{AllowAnonymousComments: true})
		id, _ := store.CreateTranslation(ctx, &domain.Translation{ImageURL: "a", TranslatedText: "t"})

		if err := store.CreateComment(ctx, id, "hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown translation rejected", func(t *testing.T) {
		store := newTestStore(t, stubIdentity{id: strPtr("user-1")}, StoreConfig{})
		err := store.CreateComment(ctx, "missing", "hello")
		if !errors.Is(err, domain.ErrWriteRejected) {
			t.Fatalf("expected rejected write, got %v", err)
		}
	})

	t.Run("no comments is empty", func(t *testing.T) {
		store := newTestStore(t, nil, StoreConfig{})
		comments, err := store.ListComments(ctx, "missing")
		if err != nil || comments == nil || len(comments) != 0 {
			t.Fatalf("expected empty slice, got %v, %v", comments, err)
		}
	})
}

func TestInitDBRefusesPostgresSchemaChanges(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{name: "auto migrate", cfg: config.DatabaseConfig{Driver: "postgres", DSNValue: "postgres://127.0.0.1:1/none", AutoMigrate: true}},
		{name: "seed", cfg: config.DatabaseConfig{Driver: "postgres", DSNValue: "postgres://127.0.0.1:1/none", SeedScripts: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitDB(&tt.cfg)
			if err == nil || !strings.Contains(err.Error(), "sqlite-only") {
				t.Fatalf("expected sqlite-only error, got %v", err)
			}
		})
	}
}

func TestSeedScriptsIsIdempotent(t *testing.T) {
	store := newTestStore(t, nil, StoreConfig{})
	ctx := context.Background()

	first, err := SeedScripts(ctx, store.db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	// cuneiform and hieroglyphs are already present
	if first != len(builtinScripts)-2 {
		t.Errorf("inserted %d, want %d", first, len(builtinScripts)-2)
	}
	second, err := SeedScripts(ctx, store.db)
	if err != nil || second != 0 {
		t.Errorf("second seed inserted %d, %v", second, err)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain":   "plain",
		"50%":     `50\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
