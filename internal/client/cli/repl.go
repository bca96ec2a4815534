package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printFn and printlnFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printFn   = fmt.Print
	printlnFn = fmt.Println
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	ListUsers(ctx context.Context) error
	ListChannels(ctx context.Context) error
	ShowChannel(ctx context.Context, args []string) error
	OpenChannel(ctx context.Context, args []string) error
	NewChannel(ctx context.Context) error
	AddMembers(ctx context.Context, args []string) error
	ListMessages(ctx context.Context) error
	Send(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login, signup, exit"
	helpLoggedIn  = "Available commands: whoami, refresh, users, channels, channel <id>, open <id>, " +
		"newchannel, addmembers [channel-id], messages, send <text>, logout [--purge], exit"
	loginRequired = "Please log in first (type 'login' or 'signup')"
)

// runREPL starts a simple read-eval-print loop for the gophchat CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit". Prompts issued by the commands themselves read
// from the same reader.
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  help, login, signup, exit | quit
//
//	Logged in:
//	  help                    show available commands
//	  whoami                  show the current user
//	  refresh                 reload profile, channels and users
//	  users                   list users
//	  channels                list channels
//	  channel <id>            show a channel with its members
//	  open <id>               open a channel and show its messages
//	  newchannel              create a channel
//	  addmembers [id]         add users to a channel
//	  messages                show messages of the open channel
//	  send <text>             send a message to the open channel
//	  logout [--purge]        log out, optionally wiping local data
//	  exit | quit             leave the program
//
// Protected commands issued while logged out print a notice instead of
// running. Errors returned by command handlers are ignored here; handlers
// report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if status := statusFn(); status != "" {
			printFn(fmt.Sprintf("gchat %s> ", status))
		} else {
			printFn("gchat> ")
		}

		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue

		case "login":
			_ = a.Login(ctx)
			continue

		case "signup", "register":
			_ = a.Signup(ctx)
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !isProtected(cmd) {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn(loginRequired)
			continue
		}

		switch cmd {
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "users":
			_ = a.ListUsers(ctx)
		case "channels", "ls":
			_ = a.ListChannels(ctx)
		case "channel":
			_ = a.ShowChannel(ctx, args)
		case "open":
			_ = a.OpenChannel(ctx, args)
		case "newchannel":
			_ = a.NewChannel(ctx)
		case "addmembers":
			_ = a.AddMembers(ctx, args)
		case "messages":
			_ = a.ListMessages(ctx)
		case "send":
			_ = a.Send(ctx, args)
		case "logout":
			_ = a.Logout(ctx, args)
		}
	}
}

func isProtected(cmd string) bool {
	switch cmd {
	case "whoami", "refresh", "users", "channels", "ls", "channel", "open",
		"newchannel", "addmembers", "messages", "send", "logout":
		return true
	}
	return false
}
