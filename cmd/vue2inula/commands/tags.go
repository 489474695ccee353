package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/openInula/inula-sub000/pkg/config"
	"github.com/openInula/inula-sub000/pkg/engine/directive"
)

func newTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Work with tag map files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a JSON or YAML tag map against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagsValidate(cmd.OutOrStdout(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the tag map JSON schema",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), string(config.TagsSchema()))
		},
	})

	return cmd
}

func runTagsValidate(w io.Writer, path string) error {
	tags, err := config.LoadTagsFile(path)
	if err != nil {
		fmt.Fprintf(w, "%s %s\n", color.RedString("invalid"), path)

		return err
	}

	fmt.Fprintf(w, "%s %s (%d rules)\n", color.GreenString("valid"), path, len(tags))
	renderTags(w, tags)

	return nil
}

func renderTags(w io.Writer, tags map[string]directive.TagRule) {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}

	slices.Sort(names)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"Tag", "Component", "Source", "Default", "Attrs"})

	for _, name := range names {
		rule := tags[name]
		tbl.AppendRow(table.Row{name, rule.Tag, rule.Source, rule.Default, len(rule.Attrs)})
	}

	tbl.Render()
}
