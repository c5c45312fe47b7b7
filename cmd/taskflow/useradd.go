package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/model"
)

func runUserAdd(args []string) error {
	fs, configPath := newFlagSet("useradd")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	role := fs.String("role", "", "admin or member")
	password := fs.String("password", "", "initial password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" || *password == "" || *role == "" {
		if err := promptUser(name, email, role, password); err != nil {
			return err
		}
	}
	if r := model.Role(*role); r != model.RoleAdmin && r != model.RoleMember {
		return fmt.Errorf("unknown role %q", *role)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e, err := setup(ctx, fs, *configPath)
	if err != nil {
		return err
	}
	defer e.store.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user := model.User{
		Name:      strings.TrimSpace(*name),
		Email:     *email,
		Password:  hash,
		Role:      model.Role(*role),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateUser(ctx, &user); err != nil {
		return err
	}

	e.log.Info().Str("user", user.ID).Str("role", string(user.Role)).Msg("user created")
	fmt.Printf("created %s %s (%s)\n", user.Role, user.Email, user.ID)
	return nil
}

// promptUser asks for whichever account fields were not given as flags.
func promptUser(name, email, role, password *string) error {
	if *role == "" {
		*role = string(model.RoleMember)
	}
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(field + " is required")
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(name).
				Validate(required("name")),
			huh.NewInput().
				Title("Email").
				Value(email).
				Validate(required("email")),
			huh.NewSelect[string]().
				Title("Role").
				Options(
					huh.NewOption("Member", string(model.RoleMember)),
					huh.NewOption("Admin", string(model.RoleAdmin)),
				).
				Value(role),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(required("password")),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("reading user details: %w", err)
	}
	return nil
}
