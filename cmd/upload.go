package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/webgl-serve/internal/progress"
	"github.com/ziadkadry99/webgl-serve/internal/store"
)

var uploadReplace bool

var uploadCmd = &cobra.Command{
	Use:   "upload <dir>",
	Short: "Upload a build folder into the record store",
	Long: `Copies every file of a Unity WebGL build folder into the database used by
the records source. Text files are stored as text and binary files as data
URLs. The folder must contain an index.html.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := setupLogger(cfg)
		if err != nil {
			return err
		}

		database, records, err := openRecords(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		im := &store.Importer{
			Store:    records,
			Reporter: progress.NewReporter("Uploading"),
			Logger:   logger,
			Include:  cfg.Include,
			Exclude:  cfg.Exclude,
			Replace:  uploadReplace,
		}
		res, err := im.Import(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Uploaded %d files (%.1f MB) to %s\n", res.Files, float64(res.Bytes)/(1<<20), cfg.Database)
		return nil
	},
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadReplace, "replace", true, "clear previously uploaded files first")
	rootCmd.AddCommand(uploadCmd)
}
