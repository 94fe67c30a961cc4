// Package cli provides the videotec management console.
//
// It wires configuration, the session store, the identity client and the
// session controller, and exposes them as cobra commands and an
// interactive REPL. Every invocation first restores the session persisted
// for the current session scope, so consecutive commands run from one
// shell share a login.
//
// Key features:
//   - Login / Logout / Whoami
//   - Register, forgot-password and reset-password
//   - Open a view: prints what the access guard decides for it
//   - Session end: forget the session of the current scope
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See NewRootCmd, App and runREPL for details.
package cli
