package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var checkInteractive bool

var checkCmd = &cobra.Command{
	Use:   "check [suffix|transform|tidy]",
	Short: "Run the pre-publish scene checks",
	Long: `Run the scene checks against the open scene.

Checks:
  suffix     transforms and joints are named with the suffix of what they hold
  transform  transforms with children have frozen transforms
  tidy       no image planes, no construction history on geometry

With no argument every check runs. Use --interactive to browse the results.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: services.CheckNames(),
	RunE:      runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkInteractive, "interactive", "i", false, "browse checks and failures in a TUI")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	if checkInteractive {
		p := tea.NewProgram(newCheckModel(ctx, sceneCheckService), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running check browser: %w", err)
		}
		return nil
	}

	if len(args) == 1 {
		rep, err := sceneCheckService.Run(ctx, args[0])
		if err != nil {
			return err
		}
		printCheckReport(rep)
		if !rep.Passed {
			return fmt.Errorf("%s check failed", rep.Check)
		}
		return nil
	}

	result, err := sceneCheckService.RunAll(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Could not read the scene"))
		explainError(err)
		return err
	}
	printCheckResult(result)
	if !result.Passed {
		return fmt.Errorf("%s", result.Summary())
	}
	return nil
}
