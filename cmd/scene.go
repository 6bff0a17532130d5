package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/adapters/host"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var sceneCmd = &cobra.Command{
	Use:   "scene",
	Short: "Manage the open scene of the file host",
	Long: `The file host stands in for Maya outside a DCC session. It tracks the
open scene in the workspace cache and reads each scene's object outline
from a sidecar file ({scene}` + host.OutlineExt + `).`,
}

var sceneNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new untitled scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := fileHost.NewScene(getContext()); err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess("Started an untitled scene"))
		return nil
	},
}

var sceneOpenCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a scene file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := fileHost.OpenScene(getContext(), args[0]); err != nil {
			fmt.Println(ui.FormatError("Failed to open " + args[0]))
			return err
		}
		fmt.Println(ui.FormatSuccess("Opened " + args[0]))
		return nil
	},
}

var sceneSelectCmd = &cobra.Command{
	Use:   "select [object...]",
	Short: "Set the selection used by selection-only saves",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := fileHost.Select(getContext(), args); err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Println(ui.FormatInfo("Selection cleared"))
		} else {
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("Selected %d objects", len(args))))
		}
		return nil
	},
}

var sceneStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the open scene",
	RunE:  runSceneStatus,
}

func init() {
	sceneCmd.AddCommand(sceneNewCmd)
	sceneCmd.AddCommand(sceneOpenCmd)
	sceneCmd.AddCommand(sceneSelectCmd)
	sceneCmd.AddCommand(sceneStatusCmd)
}

func runSceneStatus(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	state, err := fileHost.CurrentScene(ctx)
	if err != nil {
		return err
	}

	path := state.Path
	if state.IsUntitled() {
		path = ui.FormatMuted("untitled")
	}
	fmt.Println(ui.RenderKeyValue("Scene", path))

	modified := ui.StyleSuccess.Render("saved")
	if state.Modified {
		modified = ui.StyleWarning.Render("unsaved changes")
	}
	fmt.Println(ui.RenderKeyValue("State", modified))

	snap, err := fileHost.Snapshot(ctx)
	if err != nil {
		fmt.Println(ui.FormatWarning("Outline unreadable: " + err.Error()))
		return nil
	}
	fmt.Println(ui.RenderKeyValue("Objects", fmt.Sprintf("%d", len(snap.Objects))))
	if len(snap.ImagePlanes) > 0 {
		fmt.Println(ui.RenderKeyValue("Image planes", fmt.Sprintf("%d", len(snap.ImagePlanes))))
	}

	if sel, err := fileHost.Selection(ctx); err == nil && len(sel) > 0 {
		fmt.Println(ui.RenderKeyValue("Selection", fmt.Sprintf("%v", sel)))
	}
	return nil
}
