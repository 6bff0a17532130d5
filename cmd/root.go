package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/adapters/host"
	"github.com/kamal-hamza/px-cli/internal/adapters/repository"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/config"
	"github.com/kamal-hamza/px-cli/pkg/logger"
	"github.com/kamal-hamza/px-cli/pkg/ui"
	"github.com/kamal-hamza/px-cli/pkg/workspace"
)

var (
	// Global workspace and settings
	appWorkspace *workspace.Workspace
	appConfig    *config.Config
	appLogger    *logger.Logger

	// Services
	libraryService    *services.LibraryService
	pipelineService   *services.PipelineService
	sceneCheckService *services.SceneCheckService
	materialService   *services.MaterialService

	// Adapters
	catalog  *repository.FileCatalog
	fileHost *host.FileHost

	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "px",
	Short: "PX - Maya artist pipeline toolkit",
	Long: ui.StyleTitle.Render("PX") + " - Artist Pipeline Toolkit\n\n" +
		"Save and reuse scene assets from a controller library, move props through\n" +
		"the modeling, texturing, rigging and lighting departments, check scenes\n" +
		"before they are published and build materials from texture exports.",
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if appLogger != nil {
		appLogger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(sceneCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(materialCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	// Skip initialization for commands that work without a workspace
	if cmd.Name() == "init" || cmd.Name() == "version" {
		return nil
	}

	ws, err := workspace.New()
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}
	appWorkspace = ws

	if !appWorkspace.Exists() {
		fmt.Println(ui.FormatError("Workspace not initialized"))
		fmt.Println(ui.FormatInfo("Run 'px init' to create it"))
		os.Exit(1)
	}

	cfg, err := config.Load(appWorkspace.ConfigPath)
	if err != nil {
		return err
	}
	appConfig = cfg
	ui.SetTheme(appConfig.ColorTheme)

	level := appConfig.LogLevel
	if verbose {
		level = "debug"
	}
	appLogger, err = logger.New(appConfig.LogMode, level)
	if err != nil {
		return err
	}

	wireServices()
	return nil
}

// wireServices builds the adapters and services from the loaded workspace and config
func wireServices() {
	layout := repository.CatalogLayout{
		SceneExt:    appConfig.SceneExtension,
		MetadataExt: appConfig.MetadataExtension,
		PreviewExt:  appConfig.PreviewExtension,
	}
	catalog = repository.NewFileCatalog(appWorkspace.LibraryPath, layout, appLogger)
	fileHost = host.NewFileHost(appWorkspace.CachePath, appConfig.SceneExtension, appLogger)

	sceneCheckService = services.NewSceneCheckService(fileHost, services.SuffixRules{
		Suffixes: appConfig.Suffixes,
		Default:  appConfig.DefaultSuffix,
	})

	libraryService = services.NewLibraryService(catalog, fileHost, fileHost, services.PreviewSize{
		Width:  appConfig.PreviewWidth,
		Height: appConfig.PreviewHeight,
	}, appLogger)

	pipelineService = services.NewPipelineService(services.PipelineLayout{
		PropsPath:  appWorkspace.PropsPath,
		MasterPath: appWorkspace.MasterPath,
		SceneExt:   appConfig.SceneExtension,
	}, fileHost, sceneCheckService, appLogger)

	materialService = services.NewMaterialService(appConfig.TextureExtensions, appLogger)
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
