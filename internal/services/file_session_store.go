package services

import (
	"context"
	"time"

	"github.com/stockroom/backend/internal/models"
	"github.com/stockroom/backend/internal/storage"
)

// FileSessionStore keeps sessions in one JSON file. Expired entries are
// pruned on every write.
type FileSessionStore struct {
	store *storage.JSONStore
	now   func() time.Time
}

func NewFileSessionStore(path string) (*FileSessionStore, error) {
	store, err := storage.NewJSONStore(path)
	if err != nil {
		return nil, err
	}
	return &FileSessionStore{store: store, now: time.Now}, nil
}

func (s *FileSessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	sessions := map[string]*models.Session{}
	if err := s.store.Load(&sessions); err != nil {
		return nil, err
	}

	session, ok := sessions[id]
	if !ok || session == nil || session.Expired(s.now()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *FileSessionStore) Save(_ context.Context, session *models.Session) error {
	sessions := map[string]*models.Session{}
	return s.store.Update(&sessions, func() error {
		s.prune(sessions)
		if !session.Expired(s.now()) {
			sessions[session.ID] = session
		}
		return nil
	})
}

func (s *FileSessionStore) Delete(_ context.Context, id string) error {
	sessions := map[string]*models.Session{}
	return s.store.Update(&sessions, func() error {
		delete(sessions, id)
		s.prune(sessions)
		return nil
	})
}

func (s *FileSessionStore) prune(sessions map[string]*models.Session) {
	now := s.now()
	for id, session := range sessions {
		if session == nil || session.Expired(now) {
			delete(sessions, id)
		}
	}
}
