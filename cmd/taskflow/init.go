package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/nhle/taskflow/internal/model"
)

func runInit(args []string) error {
	fs, configPath := newFlagSet("init")
	fs.String("addr", "", "listen address to record")
	force := fs.Bool("force", false, "overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*configPath); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", *configPath)
	}

	cfg, err := model.LoadConfig(*configPath, fs)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" && !cfg.Auth.UseKeyring {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		cfg.Auth.JWTSecret = secret
	}

	if err := model.SaveConfig(*configPath, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *configPath)
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
