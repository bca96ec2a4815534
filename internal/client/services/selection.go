package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

// MessageLoader replaces the visible history with that of a channel.
type MessageLoader interface {
	LoadMessages(ctx context.Context, channelID int64) error
}

// Selection tracks the channel currently being viewed. Id 0 means none.
type Selection struct {
	loader MessageLoader

	mu      sync.Mutex
	lookup  func(id int64) (models.Channel, bool)
	allowed func() bool
	id      int64
	channel *models.Channel
}

func NewSelection(loader MessageLoader) *Selection {
	return &Selection{loader: loader}
}

// setLookup installs the function used to resolve channel details by id.
func (s *Selection) setLookup(fn func(id int64) (models.Channel, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookup = fn
}

// setGuard installs the check that decides whether a channel may be
// selected at all. Without a session nothing is selected.
func (s *Selection) setGuard(fn func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowed = fn
}

// permit maps id to 0 when the guard refuses selection.
func (s *Selection) permit(id int64) int64 {
	s.mu.Lock()
	allowed := s.allowed
	s.mu.Unlock()
	if id != 0 && allowed != nil && !allowed() {
		return 0
	}
	return id
}

// Select switches to channel id and reloads the message history.
func (s *Selection) Select(ctx context.Context, id int64) error {
	id = s.permit(id)

	s.mu.Lock()
	lookup := s.lookup
	s.mu.Unlock()

	var ch *models.Channel
	if id != 0 && lookup != nil {
		if found, ok := lookup(id); ok {
			ch = &found
		}
	}

	s.mu.Lock()
	s.id = id
	s.channel = ch
	s.mu.Unlock()

	return s.loader.LoadMessages(ctx, id)
}

// SelectChannel is Select for a channel whose details are already known.
func (s *Selection) SelectChannel(ctx context.Context, ch models.Channel) error {
	if s.permit(ch.ID) == 0 {
		return s.Select(ctx, 0)
	}

	s.mu.Lock()
	s.id = ch.ID
	s.channel = &ch
	s.mu.Unlock()

	return s.loader.LoadMessages(ctx, ch.ID)
}

// Update refreshes the details of the selected channel without reloading
// messages. Other channels are ignored.
func (s *Selection) Update(ch models.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != 0 && s.id == ch.ID {
		s.channel = &ch
	}
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = 0
	s.channel = nil
}

// Current returns the selected channel. When only the id is known the
// returned channel carries just the id.
func (s *Selection) Current() (models.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.id == 0:
		return models.Channel{}, false
	case s.channel == nil:
		return models.Channel{ID: s.id}, true
	default:
		return *s.channel, true
	}
}

func (s *Selection) CurrentID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}
