package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/foodgram/internal/cache"
	"github.com/magabrotheeeer/foodgram/internal/lib/sl"
	"github.com/magabrotheeeer/foodgram/internal/services/catalog"
)

// NewImportCommand создаёт команду загрузки справочников.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load reference data into the database",
	}
	cmd.AddCommand(newImportIngredientsCommand(opts))
	cmd.AddCommand(newImportTagsCommand(opts))
	return cmd
}

func newImportIngredientsCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Import ingredients from a JSON or YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := LoadIngredients(file)
			if err != nil {
				return err
			}
			svc, closeFn, err := opts.catalog(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := svc.ImportIngredients(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d ingredients\n", n, len(items))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to .json or .yaml file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newImportTagsCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Import tags from a JSON or YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := LoadTags(file)
			if err != nil {
				return err
			}
			svc, closeFn, err := opts.catalog(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := svc.ImportTags(cmd.Context(), tags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d tags\n", n, len(tags))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to .json or .yaml file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// catalog собирает сервис справочников поверх кеша из конфигурации.
// Сброс списка тегов доходит до сервера только через общий redis: кеш
// в памяти у сервера свой и обновляется по TTL или при чтении нового тега.
func (o *RootOptions) catalog(cmd *cobra.Command) (*catalog.Service, func(), error) {
	cfg, db, err := o.openStorage()
	if err != nil {
		return nil, nil, err
	}
	log := o.logger()
	c, closeCache, err := cache.New(cmd.Context(), cfg, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if err := closeCache(); err != nil {
			log.Warn("failed to close cache", sl.Err(err))
		}
		if err := db.Close(); err != nil {
			log.Warn("failed to close storage", sl.Err(err))
		}
	}
	return catalog.New(db, c, log, cfg.Cache.TTL), closeFn, nil
}
