package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/videotec/internal/client/guard"
	"github.com/dmitrijs2005/videotec/internal/client/models"
	"github.com/dmitrijs2005/videotec/internal/client/services"
	"github.com/dmitrijs2005/videotec/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// authExit maps a failed auth operation to an exit error carrying the
// message meant for the user.
func authExit(err error) error {
	if kind, ok := models.KindOf(err); ok && kind != models.KindNetwork && kind != models.KindTimeout {
		return exitError(exitAuth, "%s", err.Error())
	}
	return exitError(exitFailure, "%s", err.Error())
}

// Login prompts for the password (and the email when it is empty) and
// logs in through the session controller.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context, email string) error {
	var err error
	if email == "" {
		email, err = getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			return err
		}
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.ctrl.Login(ctx, email, string(password)); err != nil {
		return authExit(err)
	}

	p := a.ctrl.State().Session.Profile
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", p.FullName, p.Email)
	return nil
}

// Logout ends the session. It succeeds from any settled state.
func (a *App) Logout(ctx context.Context) error {
	wasLoggedIn := a.isLoggedIn()
	if err := a.ctrl.Logout(ctx); err != nil {
		return authExit(err)
	}
	if wasLoggedIn {
		fmt.Fprintln(a.out, "Logged out")
	} else {
		fmt.Fprintln(a.out, "Not logged in")
	}
	return nil
}

// WhoAmI prints the profile of the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.ctrl.State().Settled()
	if !s.IsAuthenticated() {
		fmt.Fprintln(a.out, "anonymous")
		return nil
	}

	p := s.Session.Profile
	fmt.Fprintf(a.out, "email:         %s\n", p.Email)
	fmt.Fprintf(a.out, "full name:     %s\n", p.FullName)
	if p.DateOfBirth != nil {
		fmt.Fprintf(a.out, "date of birth: %s\n", *p.DateOfBirth)
	}
	return nil
}

// Open prints what the access guard decides for view.
func (a *App) Open(ctx context.Context, view string) error {
	req, ok := guard.Lookup(view)
	if !ok {
		return exitError(exitUsage, "unknown view %q", view)
	}

	d := guard.Decide(a.ctrl.State(), req)
	switch d.Outcome {
	case guard.Redirect:
		fmt.Fprintf(a.out, "%s: login required, redirecting to %s\n", view, d.Target)
	case guard.Wait:
		fmt.Fprintf(a.out, "%s: session is loading\n", view)
	default:
		fmt.Fprintf(a.out, "%s: opened\n", view)
	}
	return nil
}

// Register prompts for the registration form and creates an account.
func (a *App) Register(ctx context.Context) error {
	var f services.RegisterForm
	var err error

	if f.FullName, err = getSimpleText(a.reader, "Enter full name", a.out); err != nil {
		return err
	}
	if f.DateOfBirth, err = getSimpleText(a.reader, "Enter date of birth (YYYY-MM-DD)", a.out); err != nil {
		return err
	}
	if f.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	f.Password, f.ConfirmPassword = string(password), string(confirm)
	if err := a.accounts.Register(ctx, f); err != nil {
		return authExit(err)
	}

	fmt.Fprintln(a.out, "Registration successful. You can now log in.")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.accounts.ForgotPassword(ctx, email); err != nil {
		return authExit(err)
	}
	fmt.Fprintln(a.out, "If the address is registered, a reset link has been sent.")
	return nil
}

// ResetPassword sets a new password using the token from a reset link.
func (a *App) ResetPassword(ctx context.Context, token string) error {
	password, err := getPassword(a.reader, "Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.accounts.ResetPassword(ctx, token, string(password), string(confirm)); err != nil {
		return authExit(err)
	}
	fmt.Fprintln(a.out, "Password has been reset. You can now log in.")
	return nil
}

// EndSession forgets the session persisted for the scope without contacting
// the server, the way closing a browser tab does.
func (a *App) EndSession(ctx context.Context) error {
	if err := a.ctrl.EndSession(ctx); err != nil {
		return authExit(err)
	}
	fmt.Fprintln(a.out, "Session ended")
	return nil
}
