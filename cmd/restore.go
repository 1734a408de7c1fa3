package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/treklog/treklog/config"
	"github.com/treklog/treklog/database"
	"github.com/treklog/treklog/database/repo/accounts"
	"github.com/treklog/treklog/internal/backup"
)

// restoreCmd imports a JSON archive into a user's account.
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Import a JSON archive into a user's account",
	Long: `Import a previously exported JSON archive. The import runs in one
transaction; on any failure the database is left untouched.

Example:
  treklog restore --user alice --input ./alice.json

  # Replace all existing data instead of adding to it
  treklog restore --user alice --input ./alice.json --clear`,
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("user")
		inputFile, _ := cmd.Flags().GetString("input")
		clear, _ := cmd.Flags().GetBool("clear")

		if err := runRestore(username, inputFile, clear); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringP("user", "u", "", "Username to import into (required)")
	restoreCmd.Flags().StringP("input", "i", "", "Input JSON archive path (required)")
	restoreCmd.Flags().Bool("clear", false, "Delete the user's existing trips before importing")
	restoreCmd.MarkFlagRequired("user")
	restoreCmd.MarkFlagRequired("input")
}

func runRestore(username, inputFile string, clearExisting bool) error {
	config.InitConfig()
	cfg := config.Get()

	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	var archive backup.Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return fmt.Errorf("failed to parse archive: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	user, err := accounts.NewRepository(db.DB()).GetByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", username, err)
	}

	result, err := backup.NewService(db).Restore(context.Background(), user.ID, &archive, clearExisting)
	if err != nil {
		return err
	}

	log.Printf("Restored %d trips (%d photos) for user %s", result.Trips, result.Photos, username)
	return nil
}
