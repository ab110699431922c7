package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/mcpanel/internal/client/router"
	"github.com/dmitrijs2005/mcpanel/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

var (
	errNotConfirmed = errors.New("not confirmed")
	errNotSignedIn  = errors.New("not signed in")
)

// Register prompts for a username, an email and a password and creates the
// account. The login view is opened afterwards; registering does not sign in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.core.Session.Register(ctx, username, email, string(password)); err != nil {
		return err
	}

	printlnFn("Account created, you can log in now.")
	return a.Open(ctx, router.Login)
}

// Login prompts for credentials, signs in and opens the dashboard.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.core.Session.Login(ctx, email, string(password)); err != nil {
		return err
	}

	if u := a.core.Session.User(); u != nil {
		printlnFn("Signed in as", u.Username)
	}
	return a.Open(ctx, router.Dashboard)
}

// Logout ends the session; the session manager moves the router to login.
func (a *App) Logout(ctx context.Context) error {
	a.core.Session.Logout(ctx)
	printlnFn("Signed out.")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.core.Session.ChangePassword(ctx, string(current), string(next)); err != nil {
		return err
	}
	printlnFn("Password changed.")
	return nil
}

// DeleteAccount asks for an explicit "yes" before deleting the account.
func (a *App) DeleteAccount(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete your account? Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		return errNotConfirmed
	}

	if err := a.core.Session.DeleteAccount(ctx); err != nil {
		return err
	}
	printlnFn("Account deleted.")
	return nil
}
