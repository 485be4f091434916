package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/foodgram/internal/lib/jwt"
	"github.com/magabrotheeeer/foodgram/internal/services/user"
)

// NewTokenCommand создаёт команду выпуска токена для существующего пользователя.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := opts.openStorage()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := user.New(db, jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL), opts.logger())
			token, err := svc.IssueToken(cmd.Context(), username)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username to issue the token for")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
