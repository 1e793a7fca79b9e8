package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/webgl-serve/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "webglserve",
	Short: "Serve Unity WebGL builds from a virtual file store",
	Long: `webglserve runs a Unity WebGL build without a general-purpose static
server. Files come from a local folder, from a database of uploaded files,
or from a remote agent over the bridge. Inline scripts in index documents
are served as separate files and every response carries the cross-origin
isolation headers threaded WebAssembly needs.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

