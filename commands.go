package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/borgmon/meetwatch/pkg/export"
	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appID = "io.github.borgmon.meetwatch"

// options are the session overrides collected from flags and MEETWATCH_* env vars
type options struct {
	SheetKey    string
	Interval    float64
	SoundDir    string
	MetricsAddr string
	LogFile     string
}

func loadOptions(v *viper.Viper) options {
	return options{
		SheetKey:    v.GetString("sheet-key"),
		Interval:    v.GetFloat64("interval"),
		SoundDir:    v.GetString("sound-dir"),
		MetricsAddr: v.GetString("metrics-addr"),
		LogFile:     v.GetString("log-file"),
	}
}

// apply overlays non-zero options on the stored settings
func (o options) apply(s models.Settings) models.Settings {
	if o.SheetKey != "" {
		s.SheetKey = o.SheetKey
	}
	if o.Interval > 0 {
		s.RefreshInterval = o.Interval
	}
	if o.SoundDir != "" {
		s.SoundDir = o.SoundDir
	}
	return s
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MEETWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "meetwatch",
		Short: "Meeting schedule watcher",
		Long: `meetwatch polls a published spreadsheet of meetings, keeps a cached
snapshot and alerts 30 and 5 minutes before each meeting starts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(v.GetString("log-file"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(loadOptions(v))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("sheet-key", "", "Publish key of the meeting sheet")
	flags.Float64("interval", 0, "Refresh interval in minutes (default: stored setting)")
	flags.String("sound-dir", "", "Directory with team WAV cues")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9091")
	flags.String("log-file", "", "Append logs to this file instead of stderr")
	if err := v.BindPFlags(flags); err != nil {
		log.Printf("[CLI] Failed to bind flags: %v", err)
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the tray application",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTray(loadOptions(v))
			},
		},
		newSyncCommand(v),
		newExportCommand(v),
	)

	return rootCmd
}

func newSyncCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync once and list today's meetings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mw := newMeetWatch(app.NewWithID(appID), loadOptions(v))
			result, err := mw.syncOnce(ctx)
			if err != nil {
				return err
			}

			now := time.Now()
			return printCountdown(cmd.OutOrStdout(), result, mw.meetings.Upcoming(now, 0), now)
		},
	}
}

func newExportCommand(v *viper.Viper) *cobra.Command {
	var (
		format     string
		outputPath string
		cached     bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the meeting snapshot as csv, ics or xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mw := newMeetWatch(app.NewWithID(appID), loadOptions(v))

			var meetings []models.Meeting
			if cached {
				meetings, err = mw.cache.LoadSnapshot()
			} else {
				var result models.SyncResult
				result, err = mw.syncOnce(ctx)
				meetings = result.Meetings
			}
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outputPath != "" && outputPath != "-" {
				file, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer file.Close()
				w = file
			}

			if err := export.Write(w, f, meetings); err != nil {
				return err
			}
			log.Printf("[EXPORT] Wrote %d meetings as %s", len(meetings), f)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "Output format: csv, ics, xlsx")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&cached, "cached", false, "Export the cached snapshot without syncing")

	return cmd
}

// printCountdown lists today's upcoming meetings with minutes until start
func printCountdown(w io.Writer, result models.SyncResult, upcoming []models.Meeting, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	source := "live"
	if result.FromCache {
		source = "cached"
	}
	fmt.Fprintf(tw, "Synced %d meetings (%s)\n", len(result.Meetings), source)
	if result.Error != "" {
		fmt.Fprintf(tw, "Last error: %s\n", result.Error)
	}

	if len(upcoming) == 0 {
		fmt.Fprintln(tw, "No more meetings today")
		return tw.Flush()
	}

	fmt.Fprintln(tw, "TIME\tIN\tPROJECT\tTEAM\tVIA")
	for _, m := range upcoming {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Time, formatCountdown(m, now), m.Project, m.Team, m.Via)
	}
	return tw.Flush()
}

func runTray(opts options) error {
	return newMeetWatch(app.NewWithID(appID), opts).run()
}

func setupLogging(path string) error {
	if path == "" {
		return nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(file)
	return nil
}
