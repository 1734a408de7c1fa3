package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/treklog/treklog/config"
	"github.com/treklog/treklog/database"
)

// migrateCmd runs DDL without starting the server.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		db, err := database.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.AutoMigrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database migrated successfully")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
