package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nhle/care-portal/internal/app"
	"github.com/nhle/care-portal/internal/credential"
	"github.com/nhle/care-portal/internal/model"
)

// logEnv overrides the log file, which defaults to careportal.log next to
// the config file. Logging is dropped when the file cannot be opened.
const logEnv = "CAREPORTAL_LOG"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "careportal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	configPath := pflag.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	saveToken := pflag.String("save-token", "", "store a backend token in the system keyring and exit")
	forgetToken := pflag.Bool("forget-token", false, "remove the stored backend token and exit")
	pflag.Parse()

	switch {
	case *saveToken != "":
		if _, err := credential.Peek(*saveToken); err != nil {
			return fmt.Errorf("token rejected: %w", err)
		}
		if err := credential.SaveToken(*saveToken); err != nil {
			return err
		}
		fmt.Println("Token saved.")
		return nil
	case *forgetToken:
		if err := credential.DeleteToken(); err != nil {
			return err
		}
		fmt.Println("Token removed.")
		return nil
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(*configPath); errors.Is(err, os.ErrNotExist) {
		if err := model.SaveConfig(*configPath, cfg); err != nil {
			log.Printf("seeding config: %v", err)
		}
	}
	model.WireLocation = cfg.Location()

	logPath := os.Getenv(logEnv)
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(*configPath), "careportal.log")
	}
	if f, err := tea.LogToFile(logPath, "careportal"); err == nil {
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	token, err := credential.Token()
	if err != nil && !errors.Is(err, credential.ErrNoToken) {
		log.Printf("reading token: %v", err)
	}

	session := app.NewSession(cfg, token)
	defer session.Close()

	if _, err := tea.NewProgram(app.New(session), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
