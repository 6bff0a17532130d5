package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your px workspace",
	Long: `Diagnose issues with your px setup.

Checks for:
  - Workspace directory layout
  - Configuration file existence
  - Host session readability
  - Library metadata that would be skipped by a scan`,
	Run: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	ctx := getContext()

	fmt.Println(ui.FormatTitle("🏥 PX Doctor"))
	fmt.Println()

	// 1. Workspace layout
	dirs := []struct {
		name string
		path string
	}{
		{"Library Directory", appWorkspace.LibraryPath},
		{"Props Directory", appWorkspace.PropsPath},
		{"Master Directory", appWorkspace.MasterPath},
		{"Cache Directory", appWorkspace.CachePath},
	}
	for _, d := range dirs {
		path := d.path
		checkStep(d.name, func() error {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return fmt.Errorf("missing at %s", path)
			}
			return nil
		})
	}

	// 2. Config
	checkStep("Configuration File", func() error {
		if _, err := os.Stat(appWorkspace.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults in use)", appWorkspace.ConfigPath)
		}
		return nil
	})

	// 3. Host session
	checkStep("Host Session", func() error {
		state, err := fileHost.CurrentScene(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", appWorkspace.SessionPath(), err)
		}
		if !state.IsUntitled() {
			if _, err := os.Stat(state.Path); os.IsNotExist(err) {
				return fmt.Errorf("open scene no longer exists: %s", state.Path)
			}
		}
		return nil
	})

	checkStep("EDITOR Variable", func() error {
		if appConfig.Editor == "" && os.Getenv("EDITOR") == "" {
			return fmt.Errorf("not set (using fallback 'vi')")
		}
		return nil
	})

	fmt.Println()
	fmt.Println(ui.FormatInfo("Checking library integrity..."))

	// 4. Every scene in the library should have readable metadata
	checkStep("Library Metadata", func() error {
		snap, err := catalog.Scan(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("library directory missing")
			}
			return err
		}

		scenes, err := filepath.Glob(filepath.Join(catalog.Dir(), "*"+appConfig.SceneExtension))
		if err != nil {
			return err
		}

		skipped := 0
		for _, scene := range scenes {
			name := domain.Stem(scene)
			if name == "" || name[0] == '.' {
				continue
			}
			if _, ok := snap[name]; !ok {
				if skipped == 0 {
					fmt.Println()
				}
				fmt.Printf("    %s (unreadable metadata)\n", name)
				skipped++
			}
		}
		if skipped > 0 {
			return fmt.Errorf("%d assets skipped by scans", skipped)
		}
		return nil
	})
}

// checkStep runs a check function and prints the result nicely
func checkStep(name string, check func() error) {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.FormatSuccess("✔"), name)
	} else {
		fmt.Printf("%s %s\n", ui.FormatError("✘"), name)
		fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	}
}
