package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every uploaded file",
	Long: `Removes all records from the database. A running server keeps the inline
scripts it already extracted until it is restarted or DELETE /api/files is
called on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, records, err := openRecords(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := context.Background()
		n, err := records.Count(ctx)
		if err != nil {
			return err
		}
		if err := records.Clear(ctx); err != nil {
			return err
		}
		fmt.Printf("Cleared %d files from %s\n", n, cfg.Database)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
