package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fsnotify/fsnotify"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	saveInfo      []string
	saveSelected  bool
	saveNoPreview bool
	showOpen      bool
	showRaw       bool
	browseImport  bool
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Save and reuse scenes from the controller library",
	Long: `The controller library is a directory of reusable scenes.

Each entry is a scene file with a JSON metadata document next to it and an
optional preview image:
  arm.ma    the saved scene
  arm.json  name, scene path, preview path and any extra info
  arm.jpg   preview captured at save time`,
}

var librarySaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the open scene to the library",
	Long: `Save the open scene (or only the selection) to the library.

Extra info is attached as key=value pairs:
  px library save arm_ctrl --info author=sam --info joints=12`,
	Args: cobra.ExactArgs(1),
	RunE: runLibrarySave,
}

var libraryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List library assets",
	RunE:    runLibraryList,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one library asset",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryShow,
}

var libraryImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a library asset into the open scene",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryImport,
}

var libraryBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Fuzzy-find a library asset and copy its scene path",
	RunE:  runLibraryBrowse,
}

var libraryWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rescan the library whenever its files change",
	RunE:  runLibraryWatch,
}

func init() {
	librarySaveCmd.Flags().StringArrayVarP(&saveInfo, "info", "i", nil, "extra info as key=value (repeatable)")
	librarySaveCmd.Flags().BoolVarP(&saveSelected, "selected", "s", false, "save only the selection")
	librarySaveCmd.Flags().BoolVar(&saveNoPreview, "no-preview", false, "skip the preview capture")
	libraryShowCmd.Flags().BoolVarP(&showOpen, "open", "o", false, "open the preview image")
	libraryShowCmd.Flags().BoolVar(&showRaw, "raw", false, "print the metadata document")
	libraryBrowseCmd.Flags().BoolVar(&browseImport, "import", false, "import the chosen asset instead of copying its path")

	libraryCmd.AddCommand(librarySaveCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryImportCmd)
	libraryCmd.AddCommand(libraryBrowseCmd)
	libraryCmd.AddCommand(libraryWatchCmd)
}

func runLibrarySave(cmd *cobra.Command, args []string) error {
	info, err := parseInfo(saveInfo)
	if err != nil {
		return err
	}

	req := services.SaveRequest{
		Name:         args[0],
		Info:         info,
		Preview:      appConfig.CapturePreview && !saveNoPreview,
		SelectedOnly: saveSelected,
	}

	rec, err := libraryService.Save(getContext(), req)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to save " + args[0]))
		explainError(err)
		return err
	}

	fmt.Println(ui.FormatSuccess("Saved to library: " + rec.Name))
	fmt.Println(ui.RenderKeyValue("Scene", rec.ScenePath))
	if rec.HasPreview() {
		fmt.Println(ui.RenderKeyValue("Preview", rec.PreviewPath))
	}
	return nil
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	records, err := libraryService.List(getContext())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Println(ui.FormatWarning("Library directory not found: " + catalog.Dir()))
			return nil
		}
		return err
	}

	if len(records) == 0 {
		fmt.Println(ui.FormatInfo("Library is empty"))
		return nil
	}

	table := ui.NewTable([]ui.TableColumn{
		{Header: "NAME", Width: 16},
		{Header: "PREVIEW"},
		{Header: "INFO"},
	})
	for _, rec := range records {
		preview := ui.FormatMuted("-")
		if rec.HasPreview() {
			preview = ui.StyleSuccess.Render(ui.IconSuccess)
		}
		var info []string
		for _, k := range rec.InfoKeys() {
			info = append(info, k+"="+formatInfoValue(rec.ExtraInfo[k]))
		}
		table.AddRow([]string{rec.Name, preview, strings.Join(info, " ")})
	}

	fmt.Println(ui.FormatTitle(fmt.Sprintf("Library (%d)", len(records))))
	fmt.Println()
	fmt.Print(table.Render())
	return nil
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	rec, err := libraryService.Find(getContext(), args[0])
	if err != nil {
		fmt.Println(ui.FormatError("Asset not found: " + args[0]))
		return err
	}

	if showRaw {
		data, err := json.MarshalIndent(rec.Document(), "", "    ")
		if err != nil {
			return err
		}
		fmt.Println(highlight(string(data), "json"))
	} else {
		printRecord(rec)
	}

	if showOpen {
		if !rec.HasPreview() {
			fmt.Println(ui.FormatWarning("No preview to open"))
			return nil
		}
		return OpenFile(rec.PreviewPath)
	}
	return nil
}

func runLibraryImport(cmd *cobra.Command, args []string) error {
	rec, err := libraryService.Load(getContext(), args[0])
	if err != nil {
		fmt.Println(ui.FormatError("Failed to import " + args[0]))
		explainError(err)
		return err
	}
	fmt.Println(ui.FormatSuccess("Imported " + rec.Name + " into the open scene"))
	return nil
}

func runLibraryBrowse(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	records, err := libraryService.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(ui.FormatWarning("Library is empty."))
		return nil
	}

	idx, err := fuzzyfinder.Find(
		records,
		func(i int) string { return records[i].Name },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return previewText(records[i])
		}),
	)
	if err != nil {
		// Aborted
		return nil
	}
	rec := records[idx]

	if browseImport {
		if _, err := libraryService.Load(ctx, rec.Name); err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess("Imported " + rec.Name + " into the open scene"))
		return nil
	}

	if err := clipboard.WriteAll(rec.ScenePath); err != nil {
		fmt.Println(ui.FormatWarning("Could not copy to clipboard: " + err.Error()))
		fmt.Println(rec.ScenePath)
		return nil
	}
	fmt.Println(ui.FormatSuccess("Copied scene path of " + rec.Name))
	return nil
}

func previewText(rec domain.AssetRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Asset: %s\n\nScene: %s\n", rec.Name, rec.ScenePath)
	if rec.HasPreview() {
		fmt.Fprintf(&b, "Preview: %s\n", filepath.Base(rec.PreviewPath))
	}
	if keys := rec.InfoKeys(); len(keys) > 0 {
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, formatInfoValue(rec.ExtraInfo[k]))
		}
	}
	return b.String()
}

func runLibraryWatch(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	dir := catalog.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	rescan := func() {
		snap, err := catalog.Scan(ctx)
		if err != nil {
			fmt.Println(ui.FormatError("Scan failed: " + err.Error()))
			return
		}
		fmt.Printf("%s %s\n", ui.FormatMuted(time.Now().Format("15:04:05")),
			ui.FormatInfo(fmt.Sprintf("%d assets: %s", len(snap), strings.Join(snap.Names(), ", "))))
	}

	fmt.Println(ui.FormatRocket("Watching " + dir))
	fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
	rescan()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	// Saves touch several files at once, so rescans are debounced
	const settle = 250 * time.Millisecond
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			appLogger.Debug("library changed", "file", event.Name, "op", event.Op.String())
			pending = time.After(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLogger.Warn("watch error", "error", err)
		case <-pending:
			pending = nil
			rescan()
		case <-interrupt:
			fmt.Println()
			return nil
		}
	}
}
