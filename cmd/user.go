package cmd

import (
	"context"
	"fmt"

	"shootdesk-backend/internal/models"
	"shootdesk-backend/internal/services"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var (
		in   services.SignUpInput
		role string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with any role",
		Long: `Create an account. Public sign up only creates photographers, so admins
are bootstrapped with this command.`,
		Example: `  shootdesk user create --email ops@example.com --password secret1 --name "Ops Lead" --role admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !models.Role(role).Valid() {
				return fmt.Errorf("unknown role %q (want %s or %s)", role, models.RoleAdmin, models.RolePhotographer)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, err := openDatabase(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.close()

			if err := db.migrate(ctx); err != nil {
				return err
			}

			authService := services.NewAuthService(db.store, services.NewSessionStore(cfg.JWT.SessionTTL), cfg.JWT.Secret)
			profile, err := authService.CreateUser(ctx, in, models.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n",
				color.New(color.FgGreen).Sprint("Created"),
				profile.Role, profile.Name, profile.ID,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "sign-in email (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number for SMS notifications")
	cmd.Flags().StringVar(&role, "role", string(models.RolePhotographer), "admin or photographer")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("name")

	return cmd
}
