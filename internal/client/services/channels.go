package services

import (
	"context"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// Channels caches the channels of the current user and drives the
// selection when a channel is created or opened.
type Channels struct {
	storeBase
	selection *Selection
	channels  []models.Channel
}

func NewChannels(session SessionProvider, c client.Client, selection *Selection, logger logging.Logger) *Channels {
	ch := &Channels{
		storeBase: storeBase{session: session, client: c, log: logger.With("module", "channels")},
		selection: selection,
	}
	selection.setLookup(ch.Find)
	selection.setGuard(session.IsAuthenticated)
	session.Subscribe(ch.onSessionEvent)
	return ch
}

func (c *Channels) onSessionEvent(ctx context.Context, e Event) {
	switch e {
	case EventEstablished:
		_ = c.FetchChannels(ctx)
	case EventEnded:
		c.mu.Lock()
		c.channels = nil
		c.resetLocked()
		c.mu.Unlock()
		c.selection.Clear()
	}
}

// FetchChannels replaces the list with the server's.
func (c *Channels) FetchChannels(ctx context.Context) error {
	creds, err := c.credentials()
	if err != nil {
		return err
	}

	gen := c.begin()
	defer c.done()

	list, err := c.client.ListChannels(ctx, creds)
	if err != nil {
		return c.fail(ctx, gen, "fetch channels", err)
	}
	if list == nil {
		list = []models.Channel{}
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return nil
	}
	c.channels = list
	c.err = ""
	c.mu.Unlock()

	if id := c.selection.CurrentID(); id != 0 {
		if ch, ok := c.Find(id); ok {
			c.selection.Update(ch)
		}
	}
	return nil
}

// FetchChannel reloads a single channel and merges it into the list.
func (c *Channels) FetchChannel(ctx context.Context, id int64) (*models.Channel, error) {
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}

	gen := c.begin()
	defer c.done()

	ch, err := c.client.GetChannel(ctx, creds, id)
	if err != nil {
		return nil, c.fail(ctx, gen, "fetch channel", err)
	}

	if c.upsert(gen, *ch, false) {
		c.selection.Update(*ch)
	}
	return ch, nil
}

// CreateChannel creates a channel, puts it at the top of the list and
// selects it. memberIDs that are not integers are skipped.
func (c *Channels) CreateChannel(ctx context.Context, name string, memberIDs []string) (*models.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Message: "Channel name is required"}
	}
	ids := parseIDs(memberIDs, false)

	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}

	gen := c.begin()
	defer c.done()

	ch, err := c.client.CreateChannel(ctx, creds, name, ids)
	if err != nil {
		return nil, c.fail(ctx, gen, "create channel", err)
	}

	if !c.upsert(gen, *ch, true) {
		return ch, nil
	}
	c.log.Info(ctx, "channel created", "channel_id", ch.ID)

	// selecting loads the (empty) history; its failure is already recorded
	// by the messages store
	_ = c.selection.SelectChannel(ctx, *ch)
	return ch, nil
}

// AddMembers adds the given users to a channel, one request per user.
// Only positive integer ids are kept; if none remain nothing is sent.
func (c *Channels) AddMembers(ctx context.Context, channelID int64, userIDs []string) (*models.Channel, error) {
	ids := parseIDs(userIDs, true)
	if len(ids) == 0 {
		return nil, &ValidationError{Message: "No valid user IDs provided"}
	}

	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}

	gen := c.begin()
	defer c.done()

	var updated *models.Channel
	for _, id := range ids {
		ch, err := c.client.AddMember(ctx, creds, channelID, id)
		if err != nil {
			return nil, c.fail(ctx, gen, "add member", err)
		}
		updated = ch
	}
	c.log.Info(ctx, "members added", "channel_id", channelID, "count", len(ids))

	c.upsert(gen, *updated, false)

	if c.selection.CurrentID() == channelID {
		return c.FetchChannel(ctx, channelID)
	}
	return updated, nil
}

// upsert merges ch into the list: replacing it in place if present,
// otherwise adding it (at the front with prepend). It reports false when
// the session ended while the request was in flight.
func (c *Channels) upsert(gen uint64, ch models.Channel, prepend bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}

	i := slices.IndexFunc(c.channels, func(x models.Channel) bool { return x.ID == ch.ID })
	switch {
	case i >= 0:
		c.channels[i] = ch
	case prepend:
		c.channels = append([]models.Channel{ch}, c.channels...)
	default:
		c.channels = append(c.channels, ch)
	}
	c.err = ""
	return true
}

// Select opens channel id; 0 deselects.
func (c *Channels) Select(ctx context.Context, id int64) error {
	return c.selection.Select(ctx, id)
}

// Channels returns a copy of the list.
func (c *Channels) Channels() []models.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.channels)
}

func (c *Channels) Find(id int64) (models.Channel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return models.Channel{}, false
}

func (c *Channels) Current() (models.Channel, bool) {
	return c.selection.Current()
}

// IsReady reports whether the list can be used: the session is
// authenticated and no fetch is in flight.
func (c *Channels) IsReady() bool {
	return c.session.IsAuthenticated() && !c.Loading()
}
