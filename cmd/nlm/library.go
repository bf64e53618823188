package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

func addCmd() *cobra.Command {
	var url, name, description, topics, contentTypes, useCases, tags string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a notebook to the library",
		RunE: func(_ *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			n, err := lib.Add(notebooks.AddInput{
				URL:          url,
				Name:         name,
				Description:  description,
				Topics:       splitList(topics),
				ContentTypes: splitList(contentTypes),
				UseCases:     splitList(useCases),
				Tags:         splitList(tags),
			})
			if err != nil {
				return err
			}
			return printJSON(n)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "NotebookLM notebook URL")
	cmd.Flags().StringVar(&name, "name", "", "display name (also the source of the id)")
	cmd.Flags().StringVar(&description, "description", "", "what the notebook contains")
	cmd.Flags().StringVar(&topics, "topics", "", "comma-separated topics")
	cmd.Flags().StringVar(&contentTypes, "content-types", "", "comma-separated content types")
	cmd.Flags().StringVar(&useCases, "use-cases", "", "comma-separated use cases")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.MarkFlagRequired("url")         //nolint:errcheck
	cmd.MarkFlagRequired("name")        //nolint:errcheck
	cmd.MarkFlagRequired("description") //nolint:errcheck
	cmd.MarkFlagRequired("topics")      //nolint:errcheck

	return cmd
}

func listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all notebooks",
		RunE: func(_ *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			all := lib.List()
			if asJSON {
				return printJSON(all)
			}
			if len(all) == 0 {
				fmt.Println("Library is empty. Add notebooks with: nlm add")
				return nil
			}
			active := lib.Active()
			for _, n := range all {
				marker := ""
				if active != nil && active.ID == n.ID {
					marker = " [ACTIVE]"
				}
				fmt.Printf("%s%s\n", n.Name, marker)
				fmt.Printf("  id: %s\n", n.ID)
				fmt.Printf("  topics: %s\n", strings.Join(n.Topics, ", "))
				fmt.Printf("  uses: %d\n\n", n.UseCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func searchCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search notebooks by name, description, topics, tags or use cases",
		RunE: func(_ *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			return printJSON(lib.Search(query))
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "search query")
	cmd.MarkFlagRequired("query") //nolint:errcheck
	return cmd
}

func activateCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Set the active notebook",
		RunE: func(_ *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			n, err := lib.Select(id)
			if err != nil {
				return err
			}
			fmt.Printf("Activated: %s (%s)\n", n.Name, n.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "notebook id")
	cmd.MarkFlagRequired("id") //nolint:errcheck
	return cmd
}

func activeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the active notebook",
		RunE: func(_ *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			n := lib.Active()
			if n == nil {
				fmt.Println("No active notebook")
				return nil
			}
			return printJSON(n)
		},
	}
}

func removeCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a notebook from the library",
		RunE: func(_ *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			removed, err := lib.Remove(id)
			if err != nil {
				return err
			}
			if removed {
				fmt.Printf("Removed: %s\n", id)
			} else {
				fmt.Printf("Not found: %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "notebook id")
	cmd.MarkFlagRequired("id") //nolint:errcheck
	return cmd
}

func updateCmd() *cobra.Command {
	var id, url, name, description, topics, contentTypes, useCases, tags string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update notebook metadata (omitted flags keep current values)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}

			var in notebooks.UpdateInput
			if cmd.Flags().Changed("url") {
				in.URL = &url
			}
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if cmd.Flags().Changed("topics") {
				in.Topics = splitList(topics)
			}
			if cmd.Flags().Changed("content-types") {
				in.ContentTypes = splitList(contentTypes)
			}
			if cmd.Flags().Changed("use-cases") {
				in.UseCases = splitList(useCases)
			}
			if cmd.Flags().Changed("tags") {
				in.Tags = splitList(tags)
			}

			n, err := lib.Update(id, in)
			if err != nil {
				return err
			}
			return printJSON(n)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "notebook id")
	cmd.Flags().StringVar(&url, "url", "", "new URL")
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&topics, "topics", "", "replacement topics, comma-separated")
	cmd.Flags().StringVar(&contentTypes, "content-types", "", "replacement content types, comma-separated")
	cmd.Flags().StringVar(&useCases, "use-cases", "", "replacement use cases, comma-separated")
	cmd.Flags().StringVar(&tags, "tags", "", "replacement tags, comma-separated")
	cmd.MarkFlagRequired("id") //nolint:errcheck
	return cmd
}

func useCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "use",
		Short: "Record a use of a notebook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			n, err := lib.IncrementUse(id)
			if err != nil {
				return err
			}
			if err := notebooks.RecordUsage(cmd.Context(), n.ID, notebooks.ActionUsed, ""); err != nil {
				fmt.Printf("history not recorded: %v\n", err)
			}
			fmt.Printf("%s used %d times\n", n.Name, n.UseCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "notebook id")
	cmd.MarkFlagRequired("id") //nolint:errcheck
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		RunE: func(_ *cobra.Command, _ []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			return printJSON(lib.GetStats())
		},
	}
}

func historyCmd() *cobra.Command {
	var id string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show usage history, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := notebooks.ListHistory(cmd.Context(), notebooks.HistoryListInput{
				NotebookID: id,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "filter to one notebook")
	cmd.Flags().IntVar(&limit, "limit", 50, "max rows")
	return cmd
}
