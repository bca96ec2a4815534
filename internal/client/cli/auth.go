package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/client/services"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// alert prints a failure the user has to notice.
func (a *App) alert(msg string) {
	fmt.Fprintf(a.out, "!! %s\n", msg)
}

// Login prompts for email and password and authenticates.
//
// A rejected login is printed as an alert with the server's messages (or
// "Invalid credentials"); the previous session, if any, is left intact.
// The password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		a.reportAuthError(err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", user.DisplayName())
	return nil
}

// Signup prompts for email, password and its confirmation and creates an
// account. A mismatching confirmation is reported without contacting the
// server.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	user, err := a.session.Signup(ctx, email, string(password), string(confirmation))
	if err != nil {
		a.reportAuthError(err)
		return err
	}

	fmt.Fprintf(a.out, "Account created. Welcome, %s!\n", user.DisplayName())
	return nil
}

func (a *App) reportAuthError(err error) {
	var authErr *services.AuthError
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &authErr):
		a.alert(authErr.Message)
	case errors.As(err, &validationErr):
		a.alert(validationErr.Message)
	case errors.Is(err, services.ErrSessionExpired):
		a.alert("Session expired, please log in again")
	default:
		a.alert("Could not sign in, see log for details")
	}
}

// Logout ends the session. It is safe to call when already logged out.
// With --purge every locally stored key is removed as well.
func (a *App) Logout(ctx context.Context, args []string) error {
	purge := false
	for _, arg := range args {
		if arg != "--purge" {
			fmt.Fprintln(a.out, "Usage: logout [--purge]")
			return nil
		}
		purge = true
	}

	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")

	if !purge || a.local == nil {
		return nil
	}
	n, err := a.local.Purge(ctx)
	if err != nil {
		a.log.Error(ctx, "purge failed", "error", err)
		a.alert("Could not remove local data, see log for details")
		return err
	}
	fmt.Fprintf(a.out, "Removed %d local entries\n", n)
	return nil
}

// WhoAmI prints the current user profile.
func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.session.CurrentUser()
	if !ok {
		fmt.Fprintln(a.out, "Profile not loaded yet, try 'refresh'")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (id %d)\n", u.DisplayName(), u.Email, u.ID)
	return nil
}

// Refresh reloads the profile, the channel list and the user directory.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.session.RefreshUser(ctx); err != nil {
		return a.reportError(ctx, "refresh profile", err)
	}
	if !a.isLoggedIn() {
		a.alert("Session ended, please log in again")
		return nil
	}
	if err := a.channels.FetchChannels(ctx); err != nil {
		return a.reportError(ctx, "refresh channels", err)
	}
	if err := a.users.FetchUsers(ctx); err != nil {
		return a.reportError(ctx, "refresh users", err)
	}
	fmt.Fprintf(a.out, "%d channels, %d users\n", len(a.channels.Channels()), len(a.users.Users()))
	return nil
}
