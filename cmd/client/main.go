package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nzaccagnino/folio/internal/api"
	"github.com/nzaccagnino/folio/internal/config"
	"github.com/nzaccagnino/folio/internal/db"
	"github.com/nzaccagnino/folio/internal/i18n"
	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/navorder"
	"github.com/nzaccagnino/folio/internal/notify"
	"github.com/nzaccagnino/folio/internal/session"
	"github.com/nzaccagnino/folio/internal/ui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "folio",
	Short:        "Terminal client of the folio site",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return login(cmd.Context())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logout(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "config file")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	log    logging.Logger
	client *api.Client
	close  func()
}

func setup() (*app, error) {
	if !config.ConfigExists(configPath) {
		if err := firstTimeSetup(configPath); err != nil {
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Language != "" {
		i18n.SetLanguage(i18n.Language(cfg.Language))
	}

	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log, err := logging.NewJSON(logFile, cfg.LogLevel)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	client := api.NewClient(cfg.Server.URL, config.NewTokenStore(cfg, configPath), log)
	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		close:  func() { logFile.Close() },
	}, nil
}

func runTUI(ctx context.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	local, err := db.New(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer local.Close()

	toasts := notify.New()
	defer toasts.Close()

	sess := session.New(a.client, a.log)
	sess.Start(ctx)
	defer sess.Close()

	m := ui.NewModel(ui.Deps{
		Client:  a.client,
		Session: sess,
		Toasts:  toasts,
		Nav:     navorder.NewStore(local, a.log),
		Log:     a.log,
	})
	defer m.Close()

	a.log.Info(ctx, "client started", "server", a.cfg.Server.URL)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func login(ctx context.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	email := loginEmail
	if email == "" {
		email = a.cfg.Server.Email
	}
	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		fmt.Print(i18n.T().Email + ": ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	fmt.Print(i18n.T().Password + ": ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	user, err := a.client.SignInWithPassword(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New(i18n.T().InvalidCredentials)
		}
		return err
	}

	// The token is already saved; keep the email for next time.
	a.cfg.Server.Email = user.Email
	if err := a.cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf(i18n.T().SignedInAs+"\n", user.Email)
	return nil
}

func logout(ctx context.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.client.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "remote logout failed", "error", err)
	}
	fmt.Println(i18n.T().SignedOut)
	return nil
}

func firstTimeSetup(path string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("  Langue / Language:")
	fmt.Println("  [1] Français")
	fmt.Println("  [2] English")
	fmt.Print("  > ")
	choice, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	language := "fr"
	if strings.TrimSpace(choice) == "2" {
		language = "en"
	}
	i18n.SetLanguage(i18n.Language(language))

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Language = language

	fmt.Printf("  Server URL [%s]: ", cfg.Server.URL)
	url, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if url = strings.TrimSpace(url); url != "" {
		cfg.Server.URL = strings.TrimRight(url, "/")
	}

	return cfg.Save(path)
}
