// Package cli implements the lectern command line.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/jwulff/lectern/internal/config"
	"github.com/jwulff/lectern/internal/db"
)

var (
	cfgFile string
	cfg     *config.Config

	// Global overrides - inherited by all subcommands
	dbPath  string
	logPath string
	noColor bool

	// Build information - set via ldflags
	Version = "dev"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lectern",
		Short: "Play lecture videos with time-coded annotations",
		Long: `lectern plays a lecture video and pops up its annotations as the video
reaches them. Annotations that have been seen collapse into a stack; clicking
one jumps back to its moment.

Quick Start:
  lectern import cells.yaml          # Store a lesson in the library
  lectern videos                     # List stored lessons
  lectern play cells.yaml --watch    # Play a lesson file, reloading on save
  lectern play --video <id> --mpv /tmp/mpv.sock`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}

			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if logPath != "" {
				cfg.LogPath = logPath
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/lectern/config.toml)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "lesson library path (default: $XDG_DATA_HOME/lectern/lectern.sqlite)")
	cmd.PersistentFlags().StringVar(&logPath, "log", "", "diagnostic log file for the player")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors")

	cmd.AddCommand(
		newPlayCmd(),
		newImportCmd(),
		newVideosCmd(),
		newExportCmd(),
		newDeleteCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func openStore() (*db.Store, error) {
	path := cfg.DBPath
	if path == "" {
		path = db.DefaultDBPath()
	}
	store, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open library %s: %w", path, err)
	}
	return store, nil
}
