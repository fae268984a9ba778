// Package session хранит скомпилированный документ и настройки
// отображения между запусками. Состояние передаётся явно через Session,
// глобального состояния нет.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mdwit/spec2admin/internal/parser"
)

// Ключи хранилища
const (
	KeyMeta        = "session.json"
	KeyDocument    = "document"
	KeyPreferences = "preferences.json"
)

// ErrNoDocument в сессии нет документа.
var ErrNoDocument = errors.New("session has no document")

// Session состояние, загружаемое при построении реестра.
type Session struct {
	ID          uuid.UUID
	UpdatedAt   time.Time
	Source      string
	Document    []byte
	Preferences Preferences
}

type meta struct {
	ID        uuid.UUID `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
	Source    string    `json:"source,omitempty"`
}

// New создаёт сессию с новым ID и настройками по умолчанию.
func New() *Session {
	return &Session{
		ID:          uuid.New(),
		Preferences: DefaultPreferences(),
	}
}

// Load читает сессию. Если сессии ещё нет, возвращается New().
// Отсутствующие документ или настройки не ошибка.
func Load(ctx context.Context, store Store) (*Session, error) {
	s := New()

	data, err := store.Get(ctx, KeyMeta)
	switch {
	case errors.Is(err, ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}
	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.ID = m.ID
	s.UpdatedAt = m.UpdatedAt
	s.Source = m.Source

	doc, err := store.Get(ctx, KeyDocument)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load document: %w", err)
	}
	s.Document = doc

	prefs, err := store.Get(ctx, KeyPreferences)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load preferences: %w", err)
	default:
		if err := json.Unmarshal(prefs, &s.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return s, nil
}

// Save проверяет настройки и записывает все ключи сессии.
func (s *Session) Save(ctx context.Context, store Store) error {
	if err := s.Preferences.Validate(); err != nil {
		return err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.UpdatedAt = time.Now().UTC()

	if len(s.Document) > 0 {
		if err := store.Put(ctx, KeyDocument, s.Document); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
	} else if err := store.Delete(ctx, KeyDocument); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	prefs, err := json.MarshalIndent(s.Preferences, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := store.Put(ctx, KeyPreferences, prefs); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}

	data, err := json.MarshalIndent(meta{ID: s.ID, UpdatedAt: s.UpdatedAt, Source: s.Source}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := store.Put(ctx, KeyMeta, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Reset удаляет всю сессию целиком.
func Reset(ctx context.Context, store Store) error {
	var errs []error
	for _, key := range []string{KeyMeta, KeyDocument, KeyPreferences} {
		if err := store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Registry компилирует сохранённый документ.
func (s *Session) Registry(opts *parser.ParseOptions) (*parser.Result, error) {
	if len(s.Document) == 0 {
		return nil, ErrNoDocument
	}
	return parser.ParseData(s.Document, opts)
}
