// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth.go - login, register, logout and status commands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// cmdLogin exchanges email/password for a session.
// Email may be given with --email; the password is always prompted
// with echo disabled, never taken from argv.
// SECURITY: Passwords on the command line leak through shell history
// and process listings.
//
// --google exchanges a Google OAuth access token instead; obtaining
// the token is up to the caller, there is no embedded browser flow.
func (a *App) cmdLogin(ctx context.Context, args *ArgParser) error {
	if accessToken := args.Flag("google"); accessToken != "" {
		res := a.session.GoogleLogin(ctx, accessToken)
		if !res.Success {
			return errors.New(res.Error)
		}
		fmt.Printf("%s Logged in as %s\n", SuccessStyle.Render("[OK]"), a.session.User().Name)
		return a.chats.Refresh(ctx)
	}

	email := args.Flag("email")
	if email == "" {
		if err := RequiresTTY("log in"); err != nil {
			return err
		}
		var err error
		email, err = PromptLine("Email: ")
		if err != nil {
			return err
		}
	}
	if !strings.Contains(email, "@") {
		return errors.New("invalid email address")
	}

	password, err := PromptPassword("Password: ")
	if err != nil {
		return err
	}

	res := a.session.Login(ctx, email, password)
	if !res.Success {
		return errors.New(res.Error)
	}

	user := a.session.User()
	fmt.Printf("%s Logged in as %s (%d credits)\n",
		SuccessStyle.Render("[OK]"), user.Name, user.Credits)
	return a.chats.Refresh(ctx)
}

// cmdRegister creates an account and opens a session.
func (a *App) cmdRegister(ctx context.Context, args *ArgParser) error {
	if err := RequiresTTY("register"); err != nil {
		return err
	}

	name := args.Flag("name")
	if name == "" {
		var err error
		name, err = PromptLine("Name: ")
		if err != nil {
			return err
		}
	}
	email := args.Flag("email")
	if email == "" {
		var err error
		email, err = PromptLine("Email: ")
		if err != nil {
			return err
		}
	}
	if name == "" || !strings.Contains(email, "@") {
		return errors.New("a name and a valid email address are required")
	}

	password, err := PromptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := PromptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	res := a.session.Register(ctx, name, email, password)
	if !res.Success {
		return errors.New(res.Error)
	}

	fmt.Printf("%s Account created. Logged in as %s\n",
		SuccessStyle.Render("[OK]"), a.session.User().Name)
	return nil
}

// cmdLogout tears down the session. Idempotent: logging out while
// logged out succeeds quietly.
func (a *App) cmdLogout() error {
	a.session.Logout()
	fmt.Println(SuccessStyle.Render("[OK]") + " Logged out")
	return nil
}

// cmdStatus shows session, credit and server reachability state.
func (a *App) cmdStatus(ctx context.Context) error {
	fmt.Println(TitleStyle.Render("askme status"))
	fmt.Println()
	fmt.Printf("%s %s\n", LabelStyle.Render("Server"), ValueStyle.Render(a.client.BaseURL()))

	if err := a.client.Health(ctx); err != nil {
		fmt.Printf("%s %s\n", LabelStyle.Render("Health"), ErrorStyle.Render("unreachable"))
	} else {
		fmt.Printf("%s %s\n", LabelStyle.Render("Health"), SuccessStyle.Render("ok"))
	}

	if !a.session.IsAuthenticated() {
		fmt.Printf("%s %s\n", LabelStyle.Render("Session"), DimStyle.Render("not logged in"))
		return nil
	}

	user := a.session.User()
	fmt.Printf("%s %s\n", LabelStyle.Render("Session"), ValueStyle.Render(user.Email))
	fmt.Printf("%s %s\n", LabelStyle.Render("Credits"), ValueStyle.Render(strconv.Itoa(user.Credits)))
	fmt.Printf("%s %s\n", LabelStyle.Render("Chats"),
		ValueStyle.Render(strconv.Itoa(len(a.chats.Chats()))))
	return nil
}
