package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, email string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Open(ctx context.Context, view string) error
	Register(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context, token string) error
	EndSession(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the console.
//
// It reads a line from reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF, when the user types
// "exit" or "quit", or after "session end".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                     show available commands
//	  - login [email]            authenticate
//	  - register                 create an account
//	  - forgot-password          request a reset link
//	  - reset-password <token>   set a new password
//	  - open <view>              open a view
//	  - exit | quit              leave the program
//
//	Logged in:
//	  - help                     show available commands
//	  - whoami                   show the profile
//	  - open <view>              open a view
//	  - login [email]            switch account
//	  - logout                   log out
//	  - session end              forget the session and leave
//	  - exit | quit              leave the program
//
// Errors returned by command handlers are printed and the loop continues.
//
// Command prompts read from the same reader, so piped input can answer
// them line by line.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("videotec %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		err = nil
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, open <view>, login, logout, session end, exit")
			} else {
				printlnFn("Available commands: login, register, forgot-password, reset-password <token>, open <view>, exit")
			}

		case "login":
			email := ""
			if len(args) > 0 {
				email = args[0]
			}
			err = a.Login(ctx, email)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <view>")
				continue
			}
			err = a.Open(ctx, args[0])

		case "register":
			err = a.Register(ctx)

		case "forgot-password":
			err = a.ForgotPassword(ctx)

		case "reset-password":
			if len(args) == 0 {
				printlnFn("Usage: reset-password <token>")
				continue
			}
			err = a.ResetPassword(ctx, args[0])

		case "session":
			if len(args) == 0 || args[0] != "end" {
				printlnFn("Usage: session end")
				continue
			}
			if err := a.EndSession(ctx); err != nil {
				printlnFn("Error:", err)
				continue
			}
			return

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

// Root runs the REPL on the app's input until the user leaves.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to the videotec console (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
