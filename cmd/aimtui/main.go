// Package main provides the CLI entrypoint for aimtui.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/aimtui/internal/audio"
	"github.com/verte-zerg/aimtui/internal/config"
	"github.com/verte-zerg/aimtui/internal/export"
	"github.com/verte-zerg/aimtui/internal/generator"
	"github.com/verte-zerg/aimtui/internal/logging"
	"github.com/verte-zerg/aimtui/internal/model"
	"github.com/verte-zerg/aimtui/internal/server"
	"github.com/verte-zerg/aimtui/internal/stats"
	"github.com/verte-zerg/aimtui/internal/statsui"
	"github.com/verte-zerg/aimtui/internal/store"
	"github.com/verte-zerg/aimtui/internal/trainer"
	"github.com/verte-zerg/aimtui/internal/tui"
)

const (
	defaultCurveWindow = 10
	defaultSSHHost     = "0.0.0.0"
	defaultSSHPort     = "2222"
)

var (
	trainMode     int
	trainDuration int
	trainSize     int
	trainDelay    int
	trainSound    bool
	trainSeed     int64
	trainNoSave   bool
	logLevel      string

	statsMode        int
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	exportFormat string
	exportMode   int
	exportSince  string
	exportLast   int

	serveHost    string
	servePort    string
	serveHostKey string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aimtui",
		Short:         "Terminal aim trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrainerCmd,
	}

	rootCmd.Flags().IntVar(&trainMode, "mode", int(model.ModeSingle), "targets on screen (1, 3 or 6)")
	rootCmd.Flags().IntVar(&trainDuration, "duration", trainer.DefaultDurationSec, "run duration in seconds (5-180)")
	rootCmd.Flags().IntVar(&trainSize, "size", trainer.DefaultTargetSize, "target diameter in px (18-120)")
	rootCmd.Flags().IntVar(&trainDelay, "delay", trainer.DefaultDelayMs, "delay before a replacement target in ms (0-2000)")
	rootCmd.Flags().BoolVar(&trainSound, "sound", false, "play hit, miss and finish sounds")
	rootCmd.Flags().Int64Var(&trainSeed, "seed", 0, "placement seed (0 for random)")
	rootCmd.Flags().BoolVar(&trainNoSave, "no-save", false, "do not record runs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runTrainerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyTrainerConfig(cmd, fileCfg)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	cfg, notes := clampConfig(trainerConfig())

	logger, logFile, err := logging.OpenFile(config.DefaultLogPath(), logLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			// Best-effort log file close.
			_ = cerr
		}
	}()
	for _, note := range notes {
		logErrln(note)
		logger.Warn("setting clamped", "detail", note)
	}

	var st *store.Store
	if !trainNoSave || hasHistory() {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	player := audio.Open(trainSound, logger)
	defer func() {
		if cerr := player.Close(); cerr != nil {
			logger.Warn("failed to close audio", "err", cerr)
		}
	}()

	gen := generator.New()
	if trainSeed != 0 {
		gen = generator.NewSeeded(trainSeed)
	}
	logger.Info("trainer starting", "mode", int(cfg.Mode), "duration", cfg.DurationSec, "size", cfg.TargetSizePx, "delay", cfg.DelayMs)

	m := tui.NewModel(cfg, tui.Options{
		Store:     st,
		NoSave:    trainNoSave,
		Generator: gen,
		Audio:     player,
		Logger:    logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// hasHistory reports whether a database already exists, so that --no-save
// still shows all-time stats.
func hasHistory() bool {
	_, err := os.Stat(config.DefaultDBPath())
	return err == nil
}

func applyTrainerConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyIntConfig(cmd, "mode", &trainMode, fileCfg.Trainer.Mode)
	applyIntConfig(cmd, "duration", &trainDuration, fileCfg.Trainer.Duration)
	applyIntConfig(cmd, "size", &trainSize, fileCfg.Trainer.Size)
	applyIntConfig(cmd, "delay", &trainDelay, fileCfg.Trainer.Delay)
	applyBoolConfig(cmd, "sound", &trainSound, fileCfg.Trainer.Sound)
	applyBoolConfig(cmd, "no-save", &trainNoSave, fileCfg.Trainer.NoSave)
	applyInt64Config(cmd, "seed", &trainSeed, fileCfg.Trainer.Seed)
}

func trainerConfig() model.Config {
	return model.Config{
		Mode:         model.Mode(trainMode),
		DurationSec:  trainDuration,
		TargetSizePx: trainSize,
		DelayMs:      trainDelay,
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run history stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsMode, "mode", 0, "mode filter (1, 3 or 6)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(statsMode, statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return renderPlainStats(cmd.OutOrStdout(), report, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(w io.Writer, report stats.Report, cfg model.StatsConfig) error {
	if err := stats.RenderSummary(w, report.Runs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Runs) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Runs, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTopRuns(w, report.Runs, 5); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderRunTable(w, report.Runs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export run history as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", string(export.FormatYAML), "output format (yaml or json)")
	cmd.Flags().IntVar(&exportMode, "mode", 0, "mode filter (1, 3 or 6)")
	cmd.Flags().StringVar(&exportSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&exportLast, "last", 0, "limit to last N runs")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	// A zero curve window loads samples for every selected run.
	cfg, err := statsConfig(exportMode, exportSince, exportLast, 0)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	doc := export.Build(report, cfg, time.Now())
	if err := export.Write(cmd.OutOrStdout(), format, doc); err != nil {
		return err
	}
	if len(report.Runs) == 0 {
		logErrln("no runs matched the filter")
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the trainer over SSH",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveHost, "host", config.GetEnv("AIMTUI_SSH_HOST", defaultSSHHost), "listen host")
	cmd.Flags().StringVar(&servePort, "port", config.GetEnv("AIMTUI_SSH_PORT", defaultSSHPort), "listen port")
	cmd.Flags().StringVar(&serveHostKey, "host-key", config.GetEnv("AIMTUI_SSH_HOST_KEY", config.DefaultHostKeyPath()), "host key path (generated when missing)")
	cmd.Flags().IntVar(&trainMode, "mode", int(model.ModeSingle), "targets on screen (1, 3 or 6)")
	cmd.Flags().IntVar(&trainDuration, "duration", trainer.DefaultDurationSec, "run duration in seconds (5-180)")
	cmd.Flags().IntVar(&trainSize, "size", trainer.DefaultTargetSize, "target diameter in px (18-120)")
	cmd.Flags().IntVar(&trainDelay, "delay", trainer.DefaultDelayMs, "delay before a replacement target in ms (0-2000)")
	cmd.Flags().BoolVar(&trainNoSave, "no-save", false, "do not record runs")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyTrainerConfig(cmd, fileCfg)
	applyStringConfig(cmd, "host", &serveHost, fileCfg.Serve.Host)
	applyStringConfig(cmd, "port", &servePort, fileCfg.Serve.Port)
	applyStringConfig(cmd, "host-key", &serveHostKey, fileCfg.Serve.HostKey)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	cfg, notes := clampConfig(trainerConfig())
	logger, err := logging.New(os.Stderr, logLevel)
	if err != nil {
		return err
	}
	for _, note := range notes {
		logger.Warn("setting clamped", "detail", note)
	}

	var st *store.Store
	if !trainNoSave {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("failed to close db", "err", cerr)
			}
		}()
	}

	srv, err := server.New(server.Config{
		Host:        serveHost,
		Port:        servePort,
		HostKeyPath: serveHostKey,
		Trainer:     cfg,
		NoSave:      trainNoSave,
	}, st, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func statsConfig(mode int, since string, last, window int) (model.StatsConfig, error) {
	cfg := model.StatsConfig{
		Mode:        model.Mode(mode),
		Last:        last,
		CurveWindow: window,
	}
	if mode != 0 && !cfg.Mode.Valid() {
		return cfg, fmt.Errorf("--mode must be 1, 3 or 6")
	}
	if last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	if window < 0 {
		return cfg, fmt.Errorf("--curve-window must be >= 0")
	}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# aimtui configuration
# Uncomment a value to enable it. CLI flags override config values.

[trainer]
# mode = %d               # Targets on screen: 1, 3 or 6
# duration = %d           # Run duration in seconds (%d-%d)
# size = %d               # Target diameter in px (%d-%d)
# delay = %d             # Replacement delay in ms (%d-%d)
# sound = false           # Play hit, miss and finish sounds
# no-save = false         # Do not record runs
# seed = 0                # Placement seed (0 for random)

[serve]
# host = %q
# port = %q
# host-key = "/path/to/ssh_host_ed25519"

[log]
# level = "info"          # debug, info, warn or error
`,
		int(model.ModeSingle),
		trainer.DefaultDurationSec, trainer.MinDurationSec, trainer.MaxDurationSec,
		trainer.DefaultTargetSize, trainer.MinTargetSize, trainer.MaxTargetSize,
		trainer.DefaultDelayMs, trainer.MinDelayMs, trainer.MaxDelayMs,
		defaultSSHHost,
		defaultSSHPort,
	)
}

// clampConfig brings out-of-range settings into range, the same way the
// trainer clamps them, and describes each adjustment.
func clampConfig(cfg model.Config) (model.Config, []string) {
	norm := trainer.NormalizeConfig(cfg)
	var notes []string
	if norm.Mode != cfg.Mode {
		notes = append(notes, fmt.Sprintf("mode %d is not 1, 3 or 6; using %d", int(cfg.Mode), int(norm.Mode)))
	}
	if norm.DurationSec != cfg.DurationSec {
		notes = append(notes, fmt.Sprintf("duration %d s is outside %d-%d; using %d",
			cfg.DurationSec, trainer.MinDurationSec, trainer.MaxDurationSec, norm.DurationSec))
	}
	if norm.TargetSizePx != cfg.TargetSizePx {
		notes = append(notes, fmt.Sprintf("size %d px is outside %d-%d; using %d",
			cfg.TargetSizePx, trainer.MinTargetSize, trainer.MaxTargetSize, norm.TargetSizePx))
	}
	if norm.DelayMs != cfg.DelayMs {
		notes = append(notes, fmt.Sprintf("delay %d ms is outside %d-%d; using %d",
			cfg.DelayMs, trainer.MinDelayMs, trainer.MaxDelayMs, norm.DelayMs))
	}
	return norm, notes
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
