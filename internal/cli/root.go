// Package cli реализует служебные команды foodgram-cli: миграции,
// загрузку справочников, выпуск токенов и чтение событий брокера.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/foodgram/internal/config"
	"github.com/magabrotheeeer/foodgram/internal/storage/repository"
)

// RootOptions общие флаги всех команд.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand создаёт корневую команду foodgram-cli.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "foodgram-cli",
		Short:         "Foodgram maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	return cmd
}

func (o *RootOptions) load() (*config.Config, error) {
	if o.ConfigPath == "" {
		return nil, errors.New("config path is empty: set --config or CONFIG_PATH")
	}
	return config.Load(o.ConfigPath)
}

func (o *RootOptions) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStorage загружает конфиг и подключается к базе.
func (o *RootOptions) openStorage() (*config.Config, *repository.Storage, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to storage: %w", err)
	}
	return cfg, db, nil
}
