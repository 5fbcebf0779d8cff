package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"e2ecore"
	"e2ecore/internal/config"
)

var (
	configPath   string
	home         string
	identity     string
	directoryURL string
	passphrase   string

	sess *e2ecore.Session
)

func Execute() error {
	root := &cobra.Command{
		Use:   "e2ectl",
		Short: "Manage end-to-end encryption keys",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if identity == "" {
				return fmt.Errorf("identity required (-i)")
			}
			if configPath == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				configPath = filepath.Join(dir, ".e2ecore", "config.yaml")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			if directoryURL != "" {
				cfg.DirectoryURL = directoryURL
			}

			opts := []e2ecore.Option{
				e2ecore.WithHome(cfg.Home),
				e2ecore.WithLogger(newLogger(cfg.LogLevel)),
				e2ecore.WithDirectoryTTL(cfg.DirectoryTTL),
				e2ecore.WithKDFParams(e2ecore.KDFParams{
					Time:     cfg.KDF.Time,
					MemoryKB: cfg.KDF.MemoryKB,
					Threads:  cfg.KDF.Threads,
				}),
			}
			if cfg.DirectoryURL != "" {
				opts = append(opts, e2ecore.WithDirectory(e2ecore.NewHTTPDirectory(cfg.DirectoryURL)))
			}
			sess, err = e2ecore.NewSession(e2ecore.IdentityID(identity), opts...)
			return err
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.e2ecore/config.yaml)")
	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.e2ecore)")
	root.PersistentFlags().StringVarP(&identity, "identity", "i", "", "local identity")
	root.PersistentFlags().StringVar(&directoryURL, "directory", "", "public-key directory base URL")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "vault passphrase")

	root.AddCommand(
		initCmd(), fingerprintCmd(), devicesCmd(), labelCmd(),
		rotateCmd(), lockCmd(), unlockCmd(), backupCmd(), resolveCmd(),
	)
	return root.Execute()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
