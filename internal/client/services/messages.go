package services

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// Messages holds the history of the active channel.
//
// Every LoadMessages bumps epoch; a fetch only lands if the epoch it was
// dispatched under is still current, so a slow response for a channel the
// user already left never overwrites the newer one.
type Messages struct {
	storeBase
	active   int64
	epoch    uint64
	messages []models.Message
}

func NewMessages(session SessionProvider, c client.Client, logger logging.Logger) *Messages {
	m := &Messages{
		storeBase: storeBase{session: session, client: c, log: logger.With("module", "messages")},
		messages:  []models.Message{},
	}
	session.Subscribe(m.onSessionEvent)
	return m
}

func (m *Messages) onSessionEvent(_ context.Context, e Event) {
	if e != EventEnded {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = []models.Message{}
	m.active = 0
	m.epoch++
	m.resetLocked()
}

// LoadMessages makes channelID active and replaces the history with the
// server's. Id 0 or a missing session clears the list and leaves no channel
// active.
func (m *Messages) LoadMessages(ctx context.Context, channelID int64) error {
	creds, credErr := m.credentials()
	if credErr != nil {
		channelID = 0
	}

	m.mu.Lock()
	m.active = channelID
	m.messages = []models.Message{}
	m.epoch++
	epoch := m.epoch
	m.mu.Unlock()

	if channelID == 0 {
		return nil
	}

	gen := m.begin()
	defer m.done()

	list, err := m.client.ListMessages(ctx, creds, channelID)
	if err != nil {
		// a superseded load still reports a rejected token
		if !errors.Is(err, client.ErrUnauthorized) && !m.isCurrent(gen, epoch) {
			return nil
		}
		return m.fail(ctx, gen, "load messages", err)
	}
	if list == nil {
		list = []models.Message{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.epoch != epoch {
		m.log.Debug(ctx, "dropping stale messages", "channel_id", channelID)
		return nil
	}
	m.messages = list
	m.err = ""
	return nil
}

// CreateMessage posts content to the active channel and appends the message
// the server returns. Nothing is appended before the server confirms.
func (m *Messages) CreateMessage(ctx context.Context, content string) (*models.Message, error) {
	creds, err := m.credentials()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	channelID := m.active
	m.mu.Unlock()
	if channelID == 0 {
		return nil, ErrNoActiveChannel
	}

	gen := m.begin()
	defer m.done()

	msg, err := m.client.CreateMessage(ctx, creds, channelID, content)
	if err != nil {
		return nil, m.fail(ctx, gen, "create message", err)
	}

	m.mu.Lock()
	if m.gen == gen && m.active == channelID {
		m.messages = append(m.messages, *msg)
	}
	m.mu.Unlock()

	return msg, nil
}

func (m *Messages) isCurrent(gen, epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen == gen && m.epoch == epoch
}

// Messages returns a copy of the visible history.
func (m *Messages) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

func (m *Messages) ActiveChannelID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}
