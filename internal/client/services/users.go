package services

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// Users caches the user directory. It is fetched once per session, when
// the session is established, and only refreshed on request.
type Users struct {
	storeBase
	users []models.User
}

func NewUsers(session SessionProvider, c client.Client, logger logging.Logger) *Users {
	u := &Users{storeBase: storeBase{session: session, client: c, log: logger.With("module", "users")}}
	session.Subscribe(u.onSessionEvent)
	return u
}

func (u *Users) onSessionEvent(ctx context.Context, e Event) {
	switch e {
	case EventEstablished:
		u.mu.Lock()
		empty := len(u.users) == 0
		u.mu.Unlock()
		if empty {
			_ = u.FetchUsers(ctx)
		}
	case EventEnded:
		u.mu.Lock()
		u.users = nil
		u.resetLocked()
		u.mu.Unlock()
	}
}

func (u *Users) FetchUsers(ctx context.Context) error {
	creds, err := u.credentials()
	if err != nil {
		return err
	}

	gen := u.begin()
	defer u.done()

	list, err := u.client.ListUsers(ctx, creds)
	if err != nil {
		return u.fail(ctx, gen, "fetch users", err)
	}
	if list == nil {
		list = []models.User{}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.gen != gen {
		return nil
	}
	u.users = list
	u.err = ""
	return nil
}

// Users returns a copy of the directory.
func (u *Users) Users() []models.User {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.users)
}

func (u *Users) Find(id int64) (models.User, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, usr := range u.users {
		if usr.ID == id {
			return usr, true
		}
	}
	return models.User{}, false
}
