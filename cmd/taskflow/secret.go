package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/nhle/taskflow/internal/credential"
)

var secretKeys = []string{credential.KeyJWTSecret, credential.KeyAdminInviteToken}

func runSecret(args []string) error {
	fs, _ := newFlagSet("secret")
	remove := fs.Bool("delete", false, "remove the secret instead of setting it")
	fs.Usage = func() {
		fmt.Printf("Usage: taskflow secret [--delete] <%s|%s>\n", secretKeys[0], secretKeys[1])
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one secret name")
	}

	key := fs.Arg(0)
	if key != credential.KeyJWTSecret && key != credential.KeyAdminInviteToken {
		return fmt.Errorf("unknown secret %q", key)
	}

	vault, err := credential.Open()
	if err != nil {
		return err
	}
	if *remove {
		return vault.Delete(key)
	}

	var value string
	err = huh.NewInput().
		Title("Value for " + key).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Validate(func(s string) error {
			if s == "" {
				return errors.New("value is required")
			}
			return nil
		}).
		Run()
	if err != nil {
		return fmt.Errorf("reading secret: %w", err)
	}
	if err := vault.Set(key, value); err != nil {
		return err
	}
	fmt.Printf("stored %s in the keyring\n", key)
	return nil
}
