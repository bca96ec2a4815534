package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/services"
)

// reportError turns a command failure into a short line for the user.
// The stores have already logged the details; validation errors carry a
// message meant for the user and are printed as is.
func (a *App) reportError(ctx context.Context, op string, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		fmt.Fprintln(a.out, validationErr.Message)
	case errors.Is(err, services.ErrNoActiveChannel):
		fmt.Fprintln(a.out, "No channel is open, use 'open <id>' first")
	case errors.Is(err, services.ErrNotAuthenticated),
		errors.Is(err, services.ErrSessionExpired),
		errors.Is(err, client.ErrUnauthorized):
		a.alert("Session ended, please log in again")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.Is(err, context.Canceled):
	default:
		a.log.Debug(ctx, "command failed", "op", op, "error", err)
		fmt.Fprintf(a.out, "Failed to %s\n", op)
	}
	return err
}
