package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"feastly/internal/bootstrap"
	"feastly/internal/modules/feast/dto"
	"feastly/internal/platform/config"
	"feastly/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	dataPath string
	store    string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "feastly",
		Short:         "Track feast windows from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataPath, "data", defaultDataPath(), "directory holding .feastly state")
	root.PersistentFlags().StringVar(&opts.store, "store", "", "storage backend override: sqlite|file|memory")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override: trace|debug|info|warn|error")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newBeginCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newCancelCmd(opts))
	root.AddCommand(newCompleteCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newOptionsCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

func defaultDataPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.dataPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.store != "" {
		cfg.Store = opts.store
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// loadApp wires the application with logs on stderr. The TUI builds its own
// app so logs go to a file instead.
func loadApp(ctx context.Context, opts *rootOptions) (*bootstrap.App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, logging.New(cfg.LogLevel, os.Stderr))
}

func withApp(opts *rootOptions, fn func(ctx context.Context, app *bootstrap.App, out io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		app, err := loadApp(ctx, opts)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()
		return fn(ctx, app, cmd.OutOrStdout())
	}
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the feastly terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, logFile, err := logging.NewFile(cfg.LogLevel, cfg.LogPath)
			if err != nil {
				return err
			}
			defer func() { _ = logFile.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			app, err := bootstrap.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newBeginCmd(opts *rootOptions) *cobra.Command {
	var hours int
	var at string
	begin := &cobra.Command{
		Use:   "begin [--hours N | --at HH:MM]",
		Short: "Begin a feast window now",
		RunE: withApp(opts, func(ctx context.Context, app *bootstrap.App, out io.Writer) error {
			var (
				res dto.BeginOutput
				err error
			)
			if strings.TrimSpace(at) != "" {
				loc, locErr := app.Config.Location()
				if locErr != nil {
					return locErr
				}
				picked, parseErr := parseClock(at, time.Now().In(loc))
				if parseErr != nil {
					return parseErr
				}
				res, err = app.FeastCLI.BeginAt(ctx, picked)
			} else {
				if hours == 0 {
					hours = app.Config.DefaultHours
				}
				if hours < 8 || hours > 24 {
					return fmt.Errorf("--hours must be within 8..24, got %d", hours)
				}
				res, err = app.FeastCLI.BeginHours(ctx, hours)
			}
			if err != nil {
				return err
			}
			if res.DisplacedID != "" {
				_, _ = fmt.Fprintf(out, "replaced running window %s\n", res.DisplacedID)
			}
			_, _ = fmt.Fprintf(out, "feast window started: %s hours=%d ends=%s\n", res.Window.ID, res.Hours, res.Window.EndDate.Format("Mon 15:04"))
			return nil
		}),
	}
	begin.Flags().IntVar(&hours, "hours", 0, "window length in hours (8..24, defaults to config)")
	begin.Flags().StringVar(&at, "at", "", "pick the end time of day (HH:MM); rounded to whole hours")
	return begin
}

// parseClock resolves HH:MM to that time of day on now's date.
func parseClock(value string, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be HH:MM: %w", err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current feast window",
		RunE: withApp(opts, func(ctx context.Context, app *bootstrap.App, out io.Writer) error {
			status, err := app.FeastCLI.Status(ctx)
			if err != nil {
				return err
			}
			printStatus(out, status)
			return nil
		}),
	}
}

func printStatus(out io.Writer, status dto.StatusOutput) {
	if !status.HasActive {
		_, _ = fmt.Fprintf(out, "no active feast window (history=%d)\n", status.HistoryCount)
		return
	}
	w := status.Current
	_, _ = fmt.Fprintf(out, "id: %s\nwindow: %s\nstarted: %s\nends: %s\nremaining: %s\nprogress: %.1f%%\n",
		w.ID, w.FormattedDuration,
		w.StartDate.Format("2006-01-02 15:04"),
		w.EndDate.Format("2006-01-02 15:04"),
		w.TimeRemainingFormatted,
		w.Progress*100,
	)
}

func newCancelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the current feast window and drop it from history",
		RunE: withApp(opts, func(ctx context.Context, app *bootstrap.App, out io.Writer) error {
			status, err := app.FeastCLI.Cancel(ctx)
			if err != nil {
				return err
			}
			if !status.Changed {
				_, _ = fmt.Fprintln(out, "no active feast window")
				return nil
			}
			_, _ = fmt.Fprintln(out, "feast window cancelled")
			return nil
		}),
	}
}

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "End the current feast window early and keep it in history",
		RunE: withApp(opts, func(ctx context.Context, app *bootstrap.App, out io.Writer) error {
			status, err := app.FeastCLI.Complete(ctx)
			if err != nil {
				return err
			}
			if !status.Changed {
				_, _ = fmt.Fprintln(out, "no active feast window")
				return nil
			}
			_, _ = fmt.Fprintln(out, "feast window completed")
			return nil
		}),
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var date string
	history := &cobra.Command{
		Use:   "history [--date YYYY-MM-DD]",
		Short: "List feast windows",
		RunE: withApp(opts, func(ctx context.Context, app *bootstrap.App, out io.Writer) error {
			var (
				windows []dto.WindowOutput
				err     error
			)
			if strings.TrimSpace(date) != "" {
				loc, locErr := app.Config.Location()
				if locErr != nil {
					return locErr
				}
				day, parseErr := time.ParseInLocation("2006-01-02", date, loc)
				if parseErr != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", parseErr)
				}
				windows, err = app.FeastCLI.WindowsForDate(ctx, day)
			} else {
				windows, err = app.FeastCLI.History(ctx)
			}
			if err != nil {
				return err
			}
			if len(windows) == 0 {
				_, _ = fmt.Fprintln(out, "no feast windows")
				return nil
			}
			now := time.Now()
			for _, w := range windows {
				state := "completed"
				if w.IsActive {
					state = "active"
				}
				_, _ = fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
					w.ID,
					w.StartDate.Format("2006-01-02 15:04"),
					w.FormattedDuration,
					state,
					humanize.RelTime(w.EndDate, now, "ago", "from now"),
				)
			}
			return nil
		}),
	}
	history.Flags().StringVar(&date, "date", "", "only windows that started on this day")
	return history
}

func newOptionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List selectable feast end times",
		RunE: withApp(opts, func(ctx context.Context, app *bootstrap.App, out io.Writer) error {
			options, err := app.FeastCLI.TimeOptions(ctx)
			if err != nil {
				return err
			}
			for _, o := range options {
				_, _ = fmt.Fprintf(out, "%s\t%-8s\t%s\t%dh\n", o.At.Format("15:04"), o.Label, o.DayLabel, o.Hours)
			}
			return nil
		}),
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the status tick and print every change until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			app, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			out := cmd.OutOrStdout()
			unsubscribe := app.FeastCLI.Subscribe(func(status dto.StatusOutput) {
				if status.HasActive {
					_, _ = fmt.Fprintf(out, "%s remaining=%s progress=%.1f%%\n", status.Now.Format("15:04:05"), status.Current.TimeRemainingFormatted, status.Current.Progress*100)
					return
				}
				_, _ = fmt.Fprintf(out, "%s idle history=%d\n", status.Now.Format("15:04:05"), status.HistoryCount)
			})
			defer unsubscribe()
			if err := app.FeastCLI.Start(ctx); err != nil {
				return err
			}
			app.Logger.Debug("watching feast windows", "data", app.Config.DataPath)
			<-ctx.Done()
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	export := &cobra.Command{Use: "export", Short: "Export feast history"}
	var outPath string
	ics := &cobra.Command{
		Use:   "ics [--out file]",
		Short: "Export feast history as iCalendar",
		RunE: withApp(opts, func(ctx context.Context, app *bootstrap.App, out io.Writer) error {
			target := out
			if strings.TrimSpace(outPath) != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer func() { _ = f.Close() }()
				target = f
			}
			res, err := app.FeastCLI.ExportICS(ctx, target)
			if err != nil {
				return err
			}
			if outPath != "" {
				_, _ = fmt.Fprintf(out, "exported %d windows to %s\n", res.Windows, outPath)
			}
			return nil
		}),
	}
	ics.Flags().StringVar(&outPath, "out", "", "output file (stdout when empty)")
	export.AddCommand(ics)
	return export
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration commands"}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write config.yaml with the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "config written: %s\n", cfg.ConfigPath)
			return nil
		},
	})
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "data: %s\nstore: %s\ndb: %s\nlog_level: %s\ndefault_hours: %d\ntick_interval: %s\ntimezone: %s\n",
				cfg.DataPath, cfg.Store, cfg.DBPath, cfg.LogLevel, cfg.DefaultHours, cfg.TickInterval, cfg.Timezone)
			return nil
		},
	})
	return cfgCmd
}
