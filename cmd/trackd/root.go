package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackd/internal/config"
	"trackd/internal/log"
)

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "trackd",
		Short:   "Track source files as components",
		Long:    `trackd keeps a persistent index of logical components: which files belong to which component, where each component came from, and which file is its entry point.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDebug(debug)

			var configErr error
			if cfgFile != "" {
				cfg, configErr = config.LoadConfigFile(cfgFile)
			} else {
				cfg, configErr = config.LoadConfig()
			}
			if configErr != nil {
				fmt.Printf("Warning: %v\n", configErr)
				fmt.Println("Using default settings.")
				cfg = config.New()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/trackd/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewAddCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewWatchCmd())

	return rootCmd
}
