package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"resume-builder/resume/client"
)

const defaultServer = "http://localhost:8080"

type cli struct {
	server      string
	sessionFile string
	api         *client.Client
}

func newRootCmd() *cobra.Command {
	app := &cli{}
	root := &cobra.Command{
		Use:           "resumectl",
		Short:         "Manage resumes through the resume API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.connect()
		},
	}
	root.PersistentFlags().StringVar(&app.server, "server", envOr("RESUME_API_URL", defaultServer), "API base URL")
	root.PersistentFlags().StringVar(&app.sessionFile, "session-file", defaultSessionFile(), "where the session token is kept")

	root.AddCommand(
		app.registerCmd(),
		app.loginCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.listCmd(),
		app.getCmd(),
		app.createCmd(),
		app.generateCmd(),
		app.deleteCmd(),
		app.exportCmd(),
	)
	return root
}

func (a *cli) connect() error {
	api, err := client.New(a.server, nil)
	if err != nil {
		return err
	}
	token, err := a.loadToken()
	if err != nil {
		return err
	}
	if token != "" {
		api.SetSessionToken(token)
	}
	a.api = api
	return nil
}

func (a *cli) loadToken() (string, error) {
	if a.sessionFile == "" {
		return "", nil
	}
	raw, err := os.ReadFile(a.sessionFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (a *cli) saveToken(token string) error {
	if a.sessionFile == "" {
		return nil
	}
	if token == "" {
		if err := os.Remove(a.sessionFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.sessionFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(a.sessionFile, []byte(token+"\n"), 0o600)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "resumectl", "session")
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
