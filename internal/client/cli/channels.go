package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// parseChannelID parses a channel id argument. Usage problems are printed
// and reported as ok=false.
func (a *App) parseChannelID(args []string, usage string) (int64, bool) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage:", usage)
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(a.out, "Invalid channel id: %s\n", args[0])
		return 0, false
	}
	return id, true
}

// ListChannels prints the channels of the current user, newest first. The
// open channel is marked with '*'.
func (a *App) ListChannels(ctx context.Context) error {
	if a.channels.Loading() {
		fmt.Fprintln(a.out, "Loading channels...")
		return nil
	}

	list := a.channels.Channels()
	if len(list) == 0 {
		if msg := a.channels.Err(); msg != "" {
			fmt.Fprintln(a.out, "Channels unavailable:", msg)
		} else {
			fmt.Fprintln(a.out, "No channels yet, create one with 'newchannel'")
		}
		return nil
	}

	current := a.selection.CurrentID()
	for _, ch := range list {
		mark := " "
		if ch.ID == current {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %4d  %-24s %d members\n", mark, ch.ID, ch.Name, len(ch.UserIDs))
	}
	return nil
}

// ShowChannel reloads one channel and prints it with its members.
func (a *App) ShowChannel(ctx context.Context, args []string) error {
	id, ok := a.parseChannelID(args, "channel <id>")
	if !ok {
		return nil
	}

	ch, err := a.channels.FetchChannel(ctx, id)
	if err != nil {
		return a.reportError(ctx, "load channel", err)
	}

	fmt.Fprintf(a.out, "#%d %s\n", ch.ID, ch.Name)
	if !ch.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "created %s\n", ch.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(a.out, "members:")
	for _, uid := range ch.UserIDs {
		name := fmt.Sprintf("user %d", uid)
		if u, ok := a.users.Find(uid); ok {
			name = fmt.Sprintf("%s <%s>", u.DisplayName(), u.Email)
		}
		owner := ""
		if uid == ch.OwnerID {
			owner = " (owner)"
		}
		fmt.Fprintf(a.out, "  %4d  %s%s\n", uid, name, owner)
	}
	return nil
}

// OpenChannel makes a channel active and prints its history.
func (a *App) OpenChannel(ctx context.Context, args []string) error {
	id, ok := a.parseChannelID(args, "open <id>")
	if !ok {
		return nil
	}

	if err := a.channels.Select(ctx, id); err != nil {
		return a.reportError(ctx, "load messages", err)
	}
	return a.ListMessages(ctx)
}

// NewChannel prompts for a name and an optional member list and creates
// the channel. The new channel becomes the open one.
func (a *App) NewChannel(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Channel name", a.out)
	if err != nil {
		return err
	}
	members, err := getSimpleText(a.reader, "Member ids (comma separated, empty for none)", a.out)
	if err != nil {
		return err
	}

	ch, err := a.channels.CreateChannel(ctx, name, splitIDs(members))
	if err != nil {
		return a.reportError(ctx, "create channel", err)
	}

	fmt.Fprintf(a.out, "Channel #%d %s created\n", ch.ID, ch.Name)
	return nil
}

// AddMembers adds users to the channel given as argument, or to the open
// channel when no argument is given.
func (a *App) AddMembers(ctx context.Context, args []string) error {
	var id int64
	if len(args) > 0 {
		var ok bool
		if id, ok = a.parseChannelID(args, "addmembers [channel-id]"); !ok {
			return nil
		}
	} else if id = a.selection.CurrentID(); id == 0 {
		fmt.Fprintln(a.out, "No channel is open, use 'addmembers <channel-id>' or 'open <id>' first")
		return nil
	}

	raw, err := getSimpleText(a.reader, "User ids to add (comma separated)", a.out)
	if err != nil {
		return err
	}

	ch, err := a.channels.AddMembers(ctx, id, splitIDs(raw))
	if err != nil {
		return a.reportError(ctx, "add members", err)
	}

	fmt.Fprintf(a.out, "Channel #%d now has %d members\n", ch.ID, len(ch.UserIDs))
	return nil
}
