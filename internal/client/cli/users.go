package cli

import (
	"context"
	"fmt"
)

// ListUsers prints the user directory, fetching it first if it has not
// been loaded yet.
func (a *App) ListUsers(ctx context.Context) error {
	if len(a.users.Users()) == 0 {
		if err := a.users.FetchUsers(ctx); err != nil {
			return a.reportError(ctx, "load users", err)
		}
	}

	me, _ := a.session.CurrentUser()
	for _, u := range a.users.Users() {
		mark := " "
		if u.ID == me.ID {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %4d  %-20s %s\n", mark, u.ID, u.DisplayName(), u.Email)
	}
	return nil
}
