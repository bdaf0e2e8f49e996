package subscriptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore keeps subscriptions in a single JSON file
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) Upsert(ctx context.Context, email string) (Subscription, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return Subscription{}, false, err
	}

	sub := Subscription{Email: email, SubscribedAt: s.now().UTC(), Active: true}
	idx := -1
	for i := range subs {
		if subs[i].Email == email {
			idx = i
			break
		}
	}
	if idx >= 0 {
		sub.ID = subs[idx].ID
	}
	// files written before IDs existed have none
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if idx >= 0 {
		subs[idx] = sub
	} else {
		subs = append(subs, sub)
	}

	if err := s.save(subs); err != nil {
		return Subscription{}, false, err
	}
	return sub, idx < 0, nil
}

func (s *FileStore) Remove(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return false, err
	}
	kept := make([]Subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.Email != email {
			kept = append(kept, sub)
		}
	}
	if len(kept) == len(subs) {
		return false, nil
	}
	return true, s.save(kept)
}

func (s *FileStore) List(ctx context.Context) ([]Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Active(ctx context.Context) ([]Subscription, error) {
	subs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterActive(subs), nil
}

// load returns an empty list when the file does not exist yet
func (s *FileStore) load() ([]Subscription, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Subscription{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subscriptions: %w", err)
	}
	var subs []Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	return subs, nil
}

func (s *FileStore) save(subs []Subscription) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create subscriptions dir: %w", err)
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return err
	}

	// Write to temporary file first, then rename (atomic operation)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("write subscriptions: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write subscriptions: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write subscriptions: %w", err)
	}
	return nil
}
