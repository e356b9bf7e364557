package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/nzaccagnino/folio/internal/auth"
	"github.com/nzaccagnino/folio/internal/config"
	"github.com/nzaccagnino/folio/internal/db"
	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "folio-server",
	Short: "REST backend of the folio site",
	Long: `folio-server stores notes, projects, homelab services and trail gear
and serves them over a small JSON API. Reads are public, writes need the
owner's token.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var ownerEmail string

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Create the owner account or reset its password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setOwner(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	ownerCmd.Flags().StringVar(&ownerEmail, "email", "", "owner email")
	_ = ownerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ownerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Server, error) {
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.NewJSON(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewServerDB(ctx, cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	srv := server.New(database, auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL), log)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting server", "addr", cfg.Addr(), "driver", cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info(shutdownCtx, "shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setOwner(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	password, err := readPassword()
	if err != nil {
		return err
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	database, err := db.NewServerDB(ctx, cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	user, err := database.SetOwner(ctx, ownerEmail, password)
	if err != nil {
		return err
	}
	fmt.Printf("Owner %s ready (id %s)\n", user.Email, user.ID)
	return nil
}

// readPassword prompts on a terminal, otherwise reads one line from stdin.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
