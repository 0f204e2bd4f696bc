package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gindex-tui/internal/config"
	"gindex-tui/internal/infra/logx"
	"gindex-tui/internal/storage"
	"gindex-tui/internal/ui"
)

// flags are the command-line overrides applied on top of the loaded config.
type flags struct {
	configPath string
	provider   string
	path       string
	layout     string
	logFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           "gindex",
		Short:         "Browse a paged file index in the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			closer, err := setupLogging(cfg, f)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			return run(cmd, cfg, f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", config.DefaultPath(), "rc or YAML configuration file")
	pf.StringVar(&f.provider, "provider", "", "listing backend: http, s3 or azure")
	pf.StringVar(&f.path, "path", "", "folder to open first (defaults to the configured root)")
	pf.StringVar(&f.layout, "layout", "", "initial layout: list or grid")
	pf.StringVar(&f.logFile, "log-file", "", "append JSON logs to this file")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging without field truncation")

	root.AddCommand(newConfigCmd(&f))
	return root
}

func newConfigCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage the configuration file"}
	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration to the --config path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*f)
			if err != nil {
				return err
			}
			if err := config.Save(f.configPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", f.configPath)
			return nil
		},
	})
	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if err := applyFlags(&cfg, f); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, f flags) error {
	if p := strings.TrimSpace(f.provider); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	if l := strings.TrimSpace(f.layout); l != "" {
		l = strings.ToLower(l)
		if l != config.LayoutList && l != config.LayoutGrid {
			return fmt.Errorf("unknown layout %q", f.layout)
		}
		cfg.Layout = l
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
	return nil
}

// setupLogging routes logx and the standard logger away from the terminal.
// DEBUG without --log-file writes debug.log.
func setupLogging(cfg config.Config, f flags) (io.Closer, error) {
	logx.RegisterSecrets(cfg.Secrets())
	logx.SetVerbose(f.verbose)
	if lvl, ok := logx.ParseLevel(cfg.LogLevel); ok {
		logx.SetMinLevel(lvl)
	}

	path := f.logFile
	if path == "" && os.Getenv("DEBUG") != "" {
		path = "debug.log"
		logx.SetMinLevel(logx.LevelDebug)
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	lf, err := logx.OpenFile(path)
	if err != nil {
		return nil, err
	}
	log.SetOutput(logx.StdlogWriter(logx.LevelInfo, lf))
	fmt.Printf("Logging to %s. Run 'tail -f %s' to follow.\n", path, path)
	return lf, nil
}

func run(cmd *cobra.Command, cfg config.Config, f flags) error {
	provider, err := storage.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logx.Infof("provider %s ready, root %s", provider.Name, cfg.RootPath)

	m := ui.NewModel(ui.Options{
		Config:       cfg,
		Lister:       provider.Lister,
		Metrics:      provider.Metrics,
		ProviderName: provider.Name,
		StartPath:    f.path,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	if s := provider.Metrics.Snapshot(); s.TotalRequests > 0 {
		logx.Infof("session stats: %s", s.Summary())
	}
	return nil
}
