package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

// GetPreferredEditor returns the editor command from config, env, or default
func GetPreferredEditor() string {
	// 1. Check Config
	if appConfig != nil && appConfig.Editor != "" {
		return appConfig.Editor
	}
	// 2. Check Environment
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	// 3. Fallback
	return "vi"
}

// OpenFile opens a file with the OS default application
func OpenFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	// Start() detaches the viewer so px can exit
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open '%s': %w", path, err)
	}
	return nil
}

// parseInfo turns key=value arguments into extra info. Values are typed the
// way YAML scalars are: numbers, booleans, or strings.
func parseInfo(pairs []string) (map[string]any, error) {
	info := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, domain.NewValidationError("info", fmt.Sprintf("expected key=value, got %q", pair))
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		switch value.(type) {
		case string, bool, int, float64:
		default:
			value = raw
		}
		info[key] = value
	}
	return info, nil
}

// formatInfoValue renders an extra info value for terminal output
func formatInfoValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// printRecord prints one asset record
func printRecord(rec domain.AssetRecord) {
	fmt.Println(ui.FormatAsset(rec.Name))
	fmt.Println(ui.RenderKeyValue("  Scene", rec.ScenePath))
	if rec.HasPreview() {
		fmt.Println(ui.RenderKeyValue("  Preview", rec.PreviewPath))
	} else {
		fmt.Println(ui.RenderKeyValue("  Preview", ui.FormatMuted("none")))
	}
	for _, k := range rec.InfoKeys() {
		fmt.Println(ui.RenderKeyValue("  "+k, formatInfoValue(rec.ExtraInfo[k])))
	}
}

// printCheckResult prints every report of a scene check run
func printCheckResult(result *services.SceneCheckResult) {
	for _, rep := range result.Reports {
		printCheckReport(rep)
	}
	fmt.Println()
	if result.Passed {
		fmt.Println(ui.FormatSuccess("Passed scene check!"))
	} else {
		fmt.Println(ui.FormatError("Failed scene check"))
	}
}

func printCheckReport(rep domain.CheckReport) {
	fmt.Println(ui.FormatPassFail(rep.Passed, checkTitle(rep.Check)))
	if rep.Passed {
		return
	}
	fmt.Println("    " + ui.StyleWarning.Render(rep.Message+":"))
	for _, name := range rep.Failures {
		fmt.Println("      " + ui.StyleMuted.Render(name))
	}
}

// explainError prints a hint for the error categories users can act on
func explainError(err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidStage):
		fmt.Println(ui.FormatInfo("Stages: " + stageNames()))
	case errors.Is(err, domain.ErrNotFound):
		fmt.Println(ui.FormatInfo("Run 'px doctor' to check the workspace layout"))
	case errors.Is(err, domain.ErrHost):
		fmt.Println(ui.FormatWarning("The scene host reported an error"))
	}
}

func stageNames() string {
	var names []string
	for _, st := range domain.Stages() {
		names = append(names, st.String())
	}
	return strings.Join(names, ", ")
}

func checkTitle(check string) string {
	if check == "" {
		return check
	}
	return strings.ToUpper(check[:1]) + check[1:] + " Test"
}

// highlight applies terminal syntax highlighting for the given lexer name
func highlight(content, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	var buf strings.Builder
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}
	if err := formatters.TTY16m.Format(&buf, style, iterator); err != nil {
		return content
	}
	return buf.String()
}
