package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/pkg/config"
	"github.com/kamal-hamza/px-cli/pkg/fileutil"
	"github.com/kamal-hamza/px-cli/pkg/ui"
	"github.com/kamal-hamza/px-cli/pkg/workspace"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the px workspace",
	Long: `Initialize the px workspace directory structure.

This creates the managed workspace at ~/.local/share/px/ (or $PX_HOME) with:
  - library/          : Controller library scenes, metadata and previews
  - pipeline/Props/   : Department working files per prop and stage
  - pipeline/Master/  : Committed stage masters
  - cache/            : Host session state and scratch scenes
  - config.yaml       : Global configuration`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	ws, err := workspace.New()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine workspace location"))
		return err
	}

	if ws.Exists() {
		fmt.Println(ui.FormatWarning("Workspace already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + ws.RootPath))
		return nil
	}

	fmt.Println(ui.FormatRocket("Initializing px workspace..."))
	fmt.Println()

	if err := ws.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize workspace"))
		return err
	}

	if fileutil.Exists(ws.ConfigPath) {
		fmt.Println(ui.FormatMuted("Keeping existing config: " + ws.ConfigPath))
	} else if err := config.DefaultConfig().Save(ws.ConfigPath); err != nil {
		// Config is optional, defaults apply without it
		fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
	} else {
		fmt.Println(ui.FormatSuccess("Default config created"))
	}

	fmt.Println(ui.FormatSuccess("Workspace initialized successfully!"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Location", ws.RootPath))
	fmt.Println(ui.RenderKeyValue("Config", ws.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Next steps:"))
	fmt.Println(ui.FormatMuted("  1. Start a prop: px pipeline import chair modeling"))
	fmt.Println(ui.FormatMuted("  2. Save to the library: px library save chair_base"))
	fmt.Println(ui.FormatMuted("  3. Check before publishing: px check"))

	return nil
}
