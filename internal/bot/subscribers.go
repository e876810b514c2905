package bot

import (
	"fmt"
	"sync"

	"homeboard/internal/model"
	"homeboard/internal/store"
	"homeboard/internal/store/local"
)

// Subscribers keeps the chats that receive the periodic summary.
type Subscribers struct {
	kv store.KV
	mu sync.Mutex
}

func NewSubscribers(kv store.KV) *Subscribers {
	return &Subscribers{kv: kv}
}

func (s *Subscribers) List() ([]model.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add registers a chat. It reports false when the chat was already known.
func (s *Subscribers) Add(sub model.Subscriber) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, err := s.load()
	if err != nil {
		return false, err
	}
	for i := range subs {
		if subs[i].ChatID == sub.ChatID {
			subs[i].Username = sub.Username
			subs[i].FirstName = sub.FirstName
			return false, s.save(subs)
		}
	}
	return true, s.save(append(subs, sub))
}

func (s *Subscribers) Remove(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, err := s.load()
	if err != nil {
		return err
	}
	kept := subs[:0]
	for _, sub := range subs {
		if sub.ChatID != chatID {
			kept = append(kept, sub)
		}
	}
	return s.save(kept)
}

func (s *Subscribers) load() ([]model.Subscriber, error) {
	var subs []model.Subscriber
	if _, err := s.kv.Get(local.BotChatsKey, &subs); err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	return subs, nil
}

func (s *Subscribers) save(subs []model.Subscriber) error {
	if subs == nil {
		subs = []model.Subscriber{}
	}
	if err := s.kv.Put(local.BotChatsKey, subs); err != nil {
		return fmt.Errorf("save subscribers: %w", err)
	}
	return nil
}
