package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/webgl-serve/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize webglserve configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose where the game is served from and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
