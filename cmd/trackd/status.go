package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"trackd/internal/index"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var originFilter string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize the component index",
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := index.Load(cfg.IndexPath())
			if err != nil {
				return err
			}

			records := idx.All()
			if len(records) == 0 {
				fmt.Println("No components tracked yet.")
				return nil
			}

			keys := make([]string, 0, len(records))
			for key := range records {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			shown := 0
			for _, key := range keys {
				rec := records[key]
				if originFilter != "" && string(rec.Origin) != originFilter {
					continue
				}
				fmt.Println(renderRecord(key, rec))
				shown++
			}
			fmt.Printf("\n%d component(s)\n", shown)
			return nil
		},
	}

	cmd.Flags().StringVar(&originFilter, "origin", "", "only show components with this origin (authored, imported, nested)")

	return cmd
}
