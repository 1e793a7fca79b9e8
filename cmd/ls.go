package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List uploaded files",
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

		entries, err := records.List(context.Background())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No files uploaded.")
			return nil
		}

		var total int64
		for _, e := range entries {
			kind := "binary"
			if e.IsText {
				kind = "text"
			}
			fmt.Printf("%10d  %-6s  %-24s  %s\n", e.Size, kind, e.ContentType, e.Path)
			total += e.Size
		}
		fmt.Printf("\n%d files, %d bytes\n", len(entries), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
