package cmds

import (
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/spf13/cobra"

	"github.com/lumenworks/submission-api/internal/models"
)

var (
	createUsername string
	createPassword string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if len(createPassword) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		db, err := openDB(ctx)
		if err != nil {
			return err
		}

		taken, err := models.Exists[models.AdminUser](ctx, db, "username = ?", createUsername)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return fmt.Errorf("username %q already exists", createUsername)
		}

		hash, err := argon2id.CreateHash(createPassword, argon2id.DefaultParams)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		admin := models.AdminUser{Username: createUsername, PasswordHash: hash}
		if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to insert admin: %w", err)
		}

		fmt.Printf("created admin %q with id %d\n", admin.Username, admin.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createUsername, "username", "", "Username for the new admin")
	createCmd.Flags().StringVar(&createPassword, "password", "", "Password for the new admin")
	for _, flag := range []string{"username", "password"} {
		err := createCmd.MarkFlagRequired(flag)
		if err != nil {
			panic("Internal error contact a contributor [create-flag-required]")
		}
	}
}
