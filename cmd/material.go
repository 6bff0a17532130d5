package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/adapters/mel"
	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/fileutil"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	materialRenderer string
	materialNormal   bool
	materialChannels []string
	materialOut      string
	materialCopy     bool
	materialDryRun   bool
)

var materialCmd = &cobra.Command{
	Use:     "material <texture-dir>",
	Aliases: []string{"mat"},
	Short:   "Build a shading network from a folder of textures",
	Long: `Build a shading network from a folder of exported textures.

Textures are assigned to channels by name (baseColor, metalness, roughness,
emissive, bump, opacity); use --channel to override. The network is written
as a MEL script named after the folder ({folder}_SHD) that can be sourced in
Maya:
  px material ./chair_textures --out chair.mel
  px material ./chair_textures --renderer blinn --channel bump=chair_Height.png --normal`,
	Args: cobra.ExactArgs(1),
	RunE: runMaterial,
}

func init() {
	materialCmd.Flags().StringVarP(&materialRenderer, "renderer", "r", "", "arnold or blinn (default from config)")
	materialCmd.Flags().BoolVarP(&materialNormal, "normal", "n", false, "treat the bump texture as a normal map")
	materialCmd.Flags().StringArrayVarP(&materialChannels, "channel", "c", nil, "assign a texture as channel=file (repeatable)")
	materialCmd.Flags().StringVarP(&materialOut, "out", "o", "", "write the script to a file instead of stdout")
	materialCmd.Flags().BoolVar(&materialCopy, "copy", false, "copy the script to the clipboard")
	materialCmd.Flags().BoolVar(&materialDryRun, "dry-run", false, "show the channel assignment without writing a script")
}

func runMaterial(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	dir := args[0]

	rendererName := materialRenderer
	if rendererName == "" {
		rendererName = appConfig.DefaultRenderer
	}
	renderer, err := domain.ParseRenderer(rendererName)
	if err != nil {
		return err
	}

	files, err := materialService.DiscoverTextures(dir)
	if err != nil {
		fmt.Println(ui.FormatError("Texture folder not found: " + dir))
		return err
	}
	if len(files) == 0 {
		fmt.Println(ui.FormatWarning("No textures in " + dir))
		fmt.Println(ui.FormatMuted("Extensions: " + strings.Join(appConfig.TextureExtensions, ", ")))
		return nil
	}

	assigned := services.AutoAssign(files)
	if err := applyChannelOverrides(assigned, dir, materialChannels); err != nil {
		return err
	}

	// The script may go to stdout, so the summary goes to stderr then
	var summary io.Writer = os.Stdout
	if materialOut == "" && !materialCopy && !materialDryRun {
		summary = os.Stderr
	}
	printAssignment(summary, assigned)

	if materialDryRun {
		return nil
	}

	graph, err := materialService.BuildMaterial(services.MaterialRequest{
		Dir:            dir,
		Renderer:       renderer,
		Channels:       assigned,
		HeightIsNormal: materialNormal,
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := mel.NewWriter(&buf)
	if err := w.Header(graph.Material, graph.Renderer); err != nil {
		return err
	}
	if _, err := materialService.Apply(ctx, graph, w); err != nil {
		return err
	}

	switch {
	case materialOut != "":
		if err := fileutil.WriteFileAtomic(materialOut, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", materialOut, err)
		}
		fmt.Fprintln(summary, ui.FormatSuccess(fmt.Sprintf("Wrote %s (%d commands) to %s", graph.Material, w.Lines(), materialOut)))
	case !materialCopy:
		fmt.Print(buf.String())
	}

	if materialCopy {
		if err := clipboard.WriteAll(buf.String()); err != nil {
			fmt.Fprintln(summary, ui.FormatWarning("Could not copy to clipboard: "+err.Error()))
			return nil
		}
		fmt.Fprintln(summary, ui.FormatSuccess("Copied "+graph.Material+" script to clipboard"))
	}
	return nil
}

// applyChannelOverrides replaces auto-assigned textures with explicit channel=file pairs
func applyChannelOverrides(assigned map[domain.Channel]string, dir string, pairs []string) error {
	for _, pair := range pairs {
		name, file, ok := strings.Cut(pair, "=")
		if !ok {
			return domain.NewValidationError("channel", fmt.Sprintf("expected channel=file, got %q", pair))
		}
		ch, err := domain.ParseChannel(name)
		if err != nil {
			return err
		}
		file = strings.TrimSpace(file)
		if file == "" {
			delete(assigned, ch)
			continue
		}
		if !fileutil.Exists(filepath.Join(dir, file)) {
			return domain.NewNotFoundError("texture", file)
		}
		assigned[ch] = file
	}
	return nil
}

func printAssignment(w io.Writer, assigned map[domain.Channel]string) {
	for _, ch := range domain.Channels() {
		file, ok := assigned[ch]
		if !ok {
			fmt.Fprintln(w, ui.RenderKeyValue(string(ch), ui.FormatMuted("-")))
			continue
		}
		fmt.Fprintln(w, ui.RenderKeyValue(string(ch), file))
	}
	fmt.Fprintln(w)
}
