package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

// ListMessages prints the history of the open channel.
func (a *App) ListMessages(ctx context.Context) error {
	if a.messages.ActiveChannelID() == 0 {
		fmt.Fprintln(a.out, "No channel is open, use 'open <id>' first")
		return nil
	}

	list := a.messages.Messages()
	if len(list) == 0 {
		if msg := a.messages.Err(); msg != "" {
			fmt.Fprintln(a.out, "Messages unavailable:", msg)
		} else {
			fmt.Fprintln(a.out, "No messages yet")
		}
		return nil
	}

	for _, m := range list {
		a.printMessage(m)
	}
	return nil
}

// Send posts text to the open channel. The message is printed once the
// server has accepted it.
func (a *App) Send(ctx context.Context, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		fmt.Fprintln(a.out, "Usage: send <text>")
		return nil
	}

	m, err := a.messages.CreateMessage(ctx, text)
	if err != nil {
		return a.reportError(ctx, "send message", err)
	}

	a.printMessage(*m)
	return nil
}

func (a *App) printMessage(m models.Message) {
	author := m.Author()
	if author == "" {
		if u, ok := a.users.Find(m.UserID); ok {
			author = u.DisplayName()
		} else {
			author = fmt.Sprintf("user %d", m.UserID)
		}
	}
	fmt.Fprintf(a.out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), author, m.Content)
}
