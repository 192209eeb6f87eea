package main

import (
	"fmt"
	"net/http"
	"os"

	"photos/internal/account"
	"photos/internal/api"
	"photos/internal/app"
	"photos/internal/config"
	"photos/internal/session"
	"photos/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "photos",
	Short: "Single-user photo organizer",
	Long: `A desktop photo organizer core: albums, captions, typed tags and
date-range / tag-expression search, persisted one blob per user.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the presentation contract over HTTP for a local UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer log.Sync()

		st, err := store.New(cfg.Store, log)
		if err != nil {
			return fmt.Errorf("initialize store: %w", err)
		}
		defer st.Close()

		accounts := account.NewManager(st, cfg.SeedDir, log)
		application := app.New(st, accounts, session.Default, log)

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
		}))
		r.Mount("/api", api.New(application, log).Routes())

		log.Info("photos serving", zap.String("addr", cfg.Addr))
		return http.ListenAndServe(cfg.Addr, r)
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts from the shell (admin surface)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored users",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, st, err := openAccounts()
		if err != nil {
			return err
		}
		defer st.Close()
		users, err := accounts.ListUsers()
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%s\t%d albums\n", u.Username, len(u.Albums))
		}
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create an empty user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, st, err := openAccounts()
		if err != nil {
			return err
		}
		defer st.Close()
		u, err := accounts.CreateUser(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("created user %q\n", u.Username)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user and its stored data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, st, err := openAccounts()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := accounts.DeleteUser(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted user %q\n", args[0])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("photos " + version)
	},
}

func openAccounts() (*account.Manager, *store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(cfg.Store, log)
	if err != nil {
		return nil, nil, err
	}
	return account.NewManager(st, cfg.SeedDir, log), st, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default photos.yaml)")
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
