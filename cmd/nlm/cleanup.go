package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

func cleanupCmd() *cobra.Command {
	var preserveLibrary, dryRun, yes bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stored skill data",
		Long: `Removes browser state, sessions, auth info, usage history and (unless
preserved) the library snapshot. Use --dry-run to preview.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			m := notebooks.NewCleanupManager(engine.Cfg.DataDir)

			preview, err := m.Preview(preserveLibrary)
			if err != nil {
				return err
			}
			printPreview(preview)

			if dryRun {
				fmt.Printf("\nDry run: would delete %d items, freeing %s\n",
					preview.TotalItems, notebooks.FormatSize(preview.TotalSize))
				return nil
			}
			if preview.TotalItems == 0 {
				fmt.Println("Nothing to clean up")
				return nil
			}
			if !yes {
				fmt.Print("\nProceed? [y/N] ")
				var answer string
				fmt.Scanln(&answer) //nolint:errcheck
				if answer != "y" && answer != "Y" {
					fmt.Println("Aborted")
					return nil
				}
			}

			res, err := m.Run(preserveLibrary, false)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d items (%s)", res.DeletedCount, notebooks.FormatSize(res.DeletedSize))
			if res.FailedCount > 0 {
				fmt.Printf(", %d failed", res.FailedCount)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().BoolVar(&preserveLibrary, "preserve-library", false, "keep the library snapshot")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview only, delete nothing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func printPreview(p *notebooks.CleanupPreview) {
	fmt.Println("Cleanup preview:")
	for _, category := range []string{
		notebooks.CategoryBrowserState, notebooks.CategorySessions,
		notebooks.CategoryLibrary, notebooks.CategoryAuth,
		notebooks.CategoryHistory, notebooks.CategoryOther,
	} {
		items := p.Categories[category]
		if len(items) == 0 {
			continue
		}
		fmt.Printf("  %s:\n", category)
		for _, item := range items {
			fmt.Printf("    %s (%s)\n", item.Path, notebooks.FormatSize(item.Size))
		}
	}
	fmt.Printf("Total: %d items, %s\n", p.TotalItems, notebooks.FormatSize(p.TotalSize))
}
