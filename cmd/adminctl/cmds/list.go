package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/submission-api/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List admin accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}

		var admins []models.AdminUser
		if err := db.WithContext(ctx).Order("id").Find(&admins).Error; err != nil {
			return fmt.Errorf("failed to list admins: %w", err)
		}

		for _, admin := range admins {
			fmt.Printf("%d\t%s\t%s\n", admin.ID, admin.Username, admin.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		return nil
	},
}
