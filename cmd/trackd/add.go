package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackd/internal/add"
	"trackd/internal/hook"
	"trackd/internal/index"
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	var (
		componentID string
		mainFile    string
		namespace   string
		tests       []string
		excludes    []string
		override    bool
	)

	cmd := &cobra.Command{
		Use:   "add <paths...>",
		Short: "Track files as one or more components",
		Long: `Add files, directories, or glob patterns to the component index.

Without an explicit --id, each path becomes its own component with an
identifier derived from its last two path segments. With --id, all paths
merge into a single component.

Test and exclude patterns may use DSL placeholders resolved per source
file: {PARENT}, {FILE_NAME}, {NAME}, and {EXT}.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := index.Load(cfg.IndexPath())
			if err != nil {
				return err
			}
			engine, err := add.New(cfg, idx)
			if err != nil {
				return err
			}

			result, err := engine.Add(add.Request{
				Paths:           args,
				ID:              componentID,
				MainFile:        mainFile,
				Namespace:       namespace,
				TestPatterns:    tests,
				ExcludePatterns: excludes,
				Override:        override,
			})
			if err != nil {
				return err
			}

			// The index is flushed exactly once, only after a successful run.
			if err := idx.Persist(); err != nil {
				return err
			}

			fmt.Print(renderResult(result))

			// Post-add side effects never affect the add result.
			runner := hook.New(cfg)
			for _, comp := range result.Components {
				runner.Fire(comp.ID, cfg.Root)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&componentID, "id", "", "explicit component id (namespace/name)")
	cmd.Flags().StringVarP(&mainFile, "main", "m", "", "main file, literal path or DSL pattern")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "namespace override for derived ids")
	cmd.Flags().StringArrayVarP(&tests, "tests", "t", nil, "test file pattern (repeatable)")
	cmd.Flags().StringArrayVarP(&excludes, "exclude", "e", nil, "exclude pattern (repeatable)")
	cmd.Flags().BoolVar(&override, "override", false, "replace an existing record's file set instead of merging")

	return cmd
}
