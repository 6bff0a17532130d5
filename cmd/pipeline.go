package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var statsChart string

var pipelineCmd = &cobra.Command{
	Use:     "pipeline",
	Aliases: []string{"pipe"},
	Short:   "Move props through the department stages",
	Long: `Props move through four department stages in order:
  modeling -> texturing -> rigging -> lighting

Working files live in pipeline/Props/{prop}/{prop}_{stage}/ and are named
{prop}_{stage}_{version}.ma. Committing a stage saves its master to
pipeline/Master/{prop}/{prop}_{stage}/{prop}.ma, which seeds the next stage.`,
}

var pipelinePropsCmd = &cobra.Command{
	Use:   "props",
	Short: "List props in the pipeline",
	RunE:  runPipelineProps,
}

var pipelineImportCmd = &cobra.Command{
	Use:   "import [prop] [stage]",
	Short: "Open the latest working scene of a prop's stage",
	Long: `Open the latest working scene of a prop's stage.

A stage that has not been started is created. Modeling starts from a blank
scene; every later stage starts from the previous stage's master. Missing
arguments are picked interactively.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPipelineImport,
}

var pipelineCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Check the open scene and publish it as the stage master",
	RunE:  runPipelineCommit,
}

var pipelineIncrementCmd = &cobra.Command{
	Use:     "increment",
	Aliases: []string{"inc"},
	Short:   "Save the open scene as the next version",
	RunE:    runPipelineIncrement,
}

var pipelineStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show each prop's progress through the stages",
	RunE:  runPipelineStats,
}

func init() {
	pipelineStatsCmd.Flags().StringVar(&statsChart, "chart", "", "also render an HTML chart to this file")

	pipelineCmd.AddCommand(pipelinePropsCmd)
	pipelineCmd.AddCommand(pipelineImportCmd)
	pipelineCmd.AddCommand(pipelineCommitCmd)
	pipelineCmd.AddCommand(pipelineIncrementCmd)
	pipelineCmd.AddCommand(pipelineStatsCmd)
}

func runPipelineProps(cmd *cobra.Command, args []string) error {
	props, err := pipelineService.Props(getContext())
	if err != nil {
		return err
	}
	if len(props) == 0 {
		fmt.Println(ui.FormatInfo("No props yet. Start one with: px pipeline import <prop> modeling"))
		return nil
	}
	for _, p := range props {
		fmt.Println(ui.FormatAsset(p))
	}
	return nil
}

func runPipelineImport(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	var prop, stage string
	if len(args) > 0 {
		prop = args[0]
	} else {
		props, err := pipelineService.Props(ctx)
		if err != nil {
			return err
		}
		if len(props) == 0 {
			return domain.NewValidationError("prop", "no props yet, pass a prop name")
		}
		idx, err := fuzzyfinder.Find(props, func(i int) string { return props[i] })
		if err != nil {
			return nil
		}
		prop = props[idx]
	}

	if len(args) > 1 {
		stage = args[1]
	} else {
		stages := domain.Stages()
		idx, err := fuzzyfinder.Find(stages, func(i int) string { return stages[i].String() })
		if err != nil {
			return nil
		}
		stage = stages[idx].String()
	}

	result, err := pipelineService.Import(ctx, prop, stage)
	if err != nil {
		fmt.Println(ui.FormatError(fmt.Sprintf("Failed to import %s %s", prop, stage)))
		explainError(err)
		return err
	}

	switch {
	case result.Seeded && result.SeededFrom != "":
		fmt.Println(ui.FormatRocket("Started " + stage + " from master"))
		fmt.Println(ui.RenderKeyValue("Master", result.SeededFrom))
	case result.Seeded:
		fmt.Println(ui.FormatRocket("Started " + stage + " from a blank scene"))
	default:
		fmt.Println(ui.FormatSuccess("Opened working scene"))
	}
	fmt.Println(ui.RenderKeyValue("Scene", result.Scene))
	return nil
}

func runPipelineCommit(cmd *cobra.Command, args []string) error {
	result, err := pipelineService.Commit(getContext())
	if result != nil && result.Checks != nil {
		printCheckResult(result.Checks)
		fmt.Println()
	}
	if err != nil {
		fmt.Println(ui.FormatError("Commit failed: " + err.Error()))
		explainError(err)
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Committed %s %s to master", result.Staged.Base, result.Staged.Stage)))
	fmt.Println(ui.RenderKeyValue("Master", result.Master))
	if next, err := result.Staged.Stage.Next(); err == nil {
		fmt.Println(ui.FormatMuted(fmt.Sprintf("Next: px pipeline import %s %s", result.Staged.Base, next)))
	}
	return nil
}

func runPipelineIncrement(cmd *cobra.Command, args []string) error {
	path, err := pipelineService.Increment(getContext())
	if err != nil {
		fmt.Println(ui.FormatWarning(err.Error()))
		return err
	}
	fmt.Println(ui.FormatSuccess("Saved " + filepath.Base(path)))
	return nil
}

func runPipelineStats(cmd *cobra.Command, args []string) error {
	stats, err := pipelineService.Stats(getContext())
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println(ui.FormatInfo("No props yet"))
		return nil
	}

	columns := []ui.TableColumn{{Header: "PROP", Width: 12}}
	for _, st := range domain.Stages() {
		columns = append(columns, ui.TableColumn{Header: st.String()})
	}
	table := ui.NewTable(columns)

	for _, ps := range stats {
		row := []string{ps.Prop}
		for _, st := range ps.Stages {
			label := "-"
			if st.Started {
				label = fmt.Sprintf("%d", st.Versions)
			}
			row = append(row, ui.FormatStage(st.Started, st.Master, label))
		}
		table.AddRow(row)
	}

	fmt.Println(ui.FormatTitle("Pipeline"))
	fmt.Println()
	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(ui.IconSuccess + " committed   " + ui.IconStage + " in progress   " + ui.IconPending + " not started"))

	if statsChart == "" {
		return nil
	}

	f, err := os.Create(statsChart)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	defer f.Close()

	if err := renderStatsChart(f, stats); err != nil {
		return err
	}
	fmt.Println(ui.FormatSuccess("Chart written to " + statsChart))
	return nil
}
