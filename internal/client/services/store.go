package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// storeBase carries what every session-dependent store shares: the guard,
// the loading/error side-band and a generation counter.
//
// gen is bumped whenever the session ends; a response whose generation no
// longer matches is dropped so it cannot repopulate cleared state.
type storeBase struct {
	session SessionProvider
	client  client.Client
	log     logging.Logger

	mu      sync.Mutex
	loading int
	err     string
	gen     uint64
}

func (b *storeBase) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading > 0
}

// Err is the last failure of this store, empty if none.
func (b *storeBase) Err() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *storeBase) ClearError() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = ""
}

func (b *storeBase) credentials() (models.Credentials, error) {
	if !b.session.IsAuthenticated() {
		return models.Credentials{}, ErrNotAuthenticated
	}
	creds, ok := b.session.Credentials()
	if !ok {
		return models.Credentials{}, ErrNotAuthenticated
	}
	return creds, nil
}

// begin marks a request in flight and returns the generation it belongs to.
func (b *storeBase) begin() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading++
	return b.gen
}

func (b *storeBase) done() {
	b.mu.Lock()
	b.loading--
	b.mu.Unlock()
}

// resetLocked invalidates in-flight requests. b.mu must be held.
func (b *storeBase) resetLocked() {
	b.gen++
	b.err = ""
}

// fail handles a failed call: a rejected token ends the session, anything
// else is recorded against this store only. A rejection of credentials from
// a session that has already ended is only logged.
func (b *storeBase) fail(ctx context.Context, gen uint64, op string, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		b.mu.Lock()
		current := b.gen == gen
		b.mu.Unlock()
		if current {
			b.session.EndSession(ctx, op+": "+err.Error())
		} else {
			b.log.Debug(ctx, op+" rejected after session ended", "error", err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	b.mu.Lock()
	if b.gen == gen {
		b.err = err.Error()
	}
	b.mu.Unlock()

	b.log.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

// parseIDs converts user-entered ids, silently skipping anything that is
// not an integer. With positiveOnly, zero and negatives are skipped too.
func parseIDs(raw []string, positiveOnly bool) []int64 {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(r), 10, 64)
		if err != nil {
			continue
		}
		if positiveOnly && id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
