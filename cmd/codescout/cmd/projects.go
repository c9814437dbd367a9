package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codescout-mcp/codescout/internal/output"
)

func newProjectsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List discovered projects per root",
		Long: `List the sub-projects discovered under each configured root. A
directory qualifies as a project when it carries a VCS marker or a
build manifest. Roots with no qualifying directories are listed as a
single flat project.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProjects(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

type projectListing struct {
	Root     string   `json:"root"`
	Projects []string `json:"projects"`
}

func runProjects(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := buildApp(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer app.Close()

	var listings []projectListing
	for _, root := range app.ws.Roots() {
		listing := projectListing{Root: root.Path}
		for _, p := range app.ws.DiscoverProjects(root.Path) {
			listing.Projects = append(listing.Projects, p.Name)
		}
		listings = append(listings, listing)
	}

	if jsonOutput {
		return encodeJSON(cmd, listings)
	}

	out := output.New(cmd.OutOrStdout())
	for _, l := range listings {
		out.Heading(l.Root)
		if len(l.Projects) == 0 {
			out.Println("  (single flat project)")
			continue
		}
		for _, name := range l.Projects {
			out.Printf("  %s", name)
		}
	}
	return nil
}
