package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/gophchat/internal/client/services"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

type App struct {
	config *config.Config
	db     *sql.DB
	log    logging.Logger

	session   *services.Session
	users     *services.Users
	channels  *services.Channels
	messages  *services.Messages
	selection *services.Selection

	// local is nil when the credential store keeps nothing else on disk.
	local localData

	reader *bufio.Reader
	out    io.Writer
}

type localData interface {
	Purge(ctx context.Context) (int, error)
}

// NewApp opens the local database and builds the API client, the session
// and its dependent stores from c. Logs go to stderr so they do not mix
// with the REPL output.
func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, logger)
	store := credentials.NewStore(db)

	a := newApp(apiClient, store, logger, bufio.NewReader(os.Stdin), os.Stdout)
	a.config = c
	a.db = db
	return a, nil
}

// newApp wires the session and the stores. Subscription order matters:
// messages and the selection are reset before channels refetch.
func newApp(c client.Client, store services.CredentialStore, logger logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	a := &App{log: logger, reader: reader, out: out}
	a.session = services.NewSession(c, store, logger)
	a.messages = services.NewMessages(a.session, c, logger)
	a.selection = services.NewSelection(a.messages)
	a.channels = services.NewChannels(a.session, c, a.selection, logger)
	a.users = services.NewUsers(a.session, c, logger)
	if l, ok := store.(localData); ok {
		a.local = l
	}
	return a
}

// Run restores a persisted session, if any, and blocks in the REPL until
// the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	if a.db != nil {
		defer a.db.Close()
	}

	fmt.Fprintln(a.out, "Welcome to gophchat (type 'help' for commands)")

	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	if u, ok := a.session.CurrentUser(); ok {
		fmt.Fprintf(a.out, "Signed in as %s\n", u.DisplayName())
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == services.StateAuthenticated
}

// status renders the prompt suffix: the current user and channel.
func (a *App) status() string {
	u, ok := a.session.CurrentUser()
	if !ok {
		return ""
	}
	s := u.DisplayName()
	if ch, ok := a.channels.Current(); ok {
		if ch.Name != "" {
			s += " #" + ch.Name
		} else {
			s += fmt.Sprintf(" #%d", ch.ID)
		}
	}
	return fmt.Sprintf("(%s)", s)
}
