package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/treklog/treklog/config"
	"github.com/treklog/treklog/database"
	"github.com/treklog/treklog/database/repo/accounts"
	"github.com/treklog/treklog/internal/backup"
)

// backupCmd exports one user's travel data to a JSON archive file.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export a user's travel data to a JSON archive",
	Long: `Export a user's complete travel data to a JSON archive.

Example:
  # Export to default file (./backups/backup_YYYYMMDD_HHMMSS.json)
  treklog backup --user alice

  # Export to specific file
  treklog backup --user alice --output ./alice.json`,
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("user")
		outputFile, _ := cmd.Flags().GetString("output")

		if err := runBackup(username, outputFile); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringP("user", "u", "", "Username to export (required)")
	backupCmd.Flags().StringP("output", "o", "", "Output JSON file path")
	backupCmd.MarkFlagRequired("user")
}

func runBackup(username, outputFile string) error {
	config.InitConfig()
	cfg := config.Get()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	user, err := accounts.NewRepository(db.DB()).GetByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", username, err)
	}

	archive, err := backup.NewService(db).Export(context.Background(), user.ID)
	if err != nil {
		return err
	}

	if outputFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputFile = filepath.Join("./backups", fmt.Sprintf("backup_%s.json", timestamp))
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(archive); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	log.Printf("Exported %d trips for user %s to %s", len(archive.Trips), username, outputFile)
	return nil
}
