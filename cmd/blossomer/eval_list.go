package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phillipou/blossomer-cli-sub000/internal/dataset"
	"github.com/phillipou/blossomer-cli-sub000/internal/discovery"
	"github.com/phillipou/blossomer-cli-sub000/internal/models"
	"github.com/phillipou/blossomer-cli-sub000/internal/results"
)

func newEvalListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered prompt evals",
		Args:  cobra.NoArgs,
		RunE:  listCommandE,
	}
}

func listCommandE(cmd *cobra.Command, _ []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	root := resolveEvalsRoot(proj)

	prompts, err := discovery.Discover(root)
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No prompt evals found under %s\n", root)
		return nil
	}

	store := results.NewStore(discovery.ResultsDir(root))

	header := []string{"NAME", "SERVICE", "ROWS", "CHECKS", "JUDGES", "LAST RUN"}
	rows := make([][]string, 0, len(prompts))
	for _, p := range prompts {
		rows = append(rows, listRow(p, store))
	}

	renderTable(cmd.OutOrStdout(), header, rows)
	return nil
}

// listRow builds one table row. A broken config or dataset degrades to a
// placeholder instead of aborting the listing.
func listRow(p discovery.DiscoveredPrompt, store *results.Store) []string {
	service, checkCount, judgeCount := "(invalid config)", "-", "-"
	if cfg, err := models.LoadPromptEvalConfig(p.ConfigPath); err == nil {
		service = cfg.Service.String()
		checkCount = strconv.Itoa(len(cfg.Judges.Deterministic))
		judgeCount = strconv.Itoa(len(cfg.Judges.LLM))
	}

	rowCount := "-"
	if p.HasData() {
		if dataRows, err := dataset.LoadCSV(p.DataPath); err == nil {
			rowCount = strconv.Itoa(len(dataRows))
		}
	}

	lastRun := "never"
	if entries, err := store.List(p.Name); err == nil && len(entries) > 0 {
		lastRun = entries[0].Timestamp.Local().Format("2006-01-02 15:04")
	}

	return []string{p.Name, service, rowCount, checkCount, judgeCount, lastRun}
}
