package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trackd/internal/index"
	"trackd/internal/watch"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-add components when their files change",
		Long:  `Watch the root directories of authored components and re-run the add engine when their files change, keeping the index in sync with ongoing edits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := index.Load(cfg.IndexPath())
			if err != nil {
				return err
			}

			watcher, err := watch.New(cfg, idx)
			if err != nil {
				return err
			}
			roots := watcher.Roots()
			if len(roots) == 0 {
				fmt.Println("No authored components with a root directory to watch.")
				return nil
			}
			for dir, id := range roots {
				fmt.Printf("Watching %s (%s)\n", dir, id)
			}
			fmt.Println("Press Ctrl+C to stop.")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				watcher.Stop()
			}()

			return watcher.Start()
		},
	}
}
