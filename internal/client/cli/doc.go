// Package cli provides the interactive gophchat command-line client.
//
// It wires configuration, local storage, the API client, the session and
// the dependent stores, and runs a REPL on top of them. Typical flow:
// restore the persisted session (if any), then execute user commands until
// the user exits.
//
// Key features:
//   - Login / Signup / Logout
//   - List users and channels, show a channel with its members
//   - Open a channel, read and send messages
//   - Create channels and add members
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
