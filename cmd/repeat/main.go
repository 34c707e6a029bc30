// Command repeat expands a repeating event and prints its occurrences.
//
//	repeat -date 2025-10-01 -type weekly -end 2025-10-31 -title "Team sync"
//	repeat -config engine.yaml -date 2024-01-31 -type monthly -format ics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/mo"

	"github.com/cyp0633/librepeat/event"
	"github.com/cyp0633/librepeat/recurrence"
	"github.com/cyp0633/librepeat/storage/memory"
	"github.com/cyp0633/librepeat/workflow"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	date       string
	repeatType string
	interval   int
	end        string
	title      string
	start      string
	finish     string
	format     string
	verbose    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "repeat:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	conf, err := recurrence.LoadEngineConfig(flags.configPath)
	if err != nil {
		return err
	}
	engine, err := recurrence.NewEngineWithConfig(conf, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	draft, err := flags.draft()
	if err != nil {
		return err
	}

	ctx := context.Background()
	svc := workflow.New(memory.New(), engine, logger)
	occurrences, err := svc.Create(ctx, draft)
	if err != nil {
		var verr *recurrence.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("-end %s: %s", verr.EndDate, verr.Reason)
		}
		return err
	}
	logger.Debug("expanded", "occurrences", len(occurrences), "horizon", engine.Horizon())

	switch flags.format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(occurrences)
	case "ics":
		return svc.Export(ctx, stdout)
	default:
		return fmt.Errorf("unknown format %q", flags.format)
	}
}

func parseFlags(args []string, output io.Writer) (flagConfig, error) {
	var cfg flagConfig

	fs := flag.NewFlagSet("repeat", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.configPath, "config", "", "Path to engine config file (YAML); defaults apply when empty")
	fs.StringVar(&cfg.date, "date", "", "First occurrence (YYYY-MM-DD)")
	fs.StringVar(&cfg.repeatType, "type", "none", "Repeat type: none, daily, weekly, monthly or yearly")
	fs.IntVar(&cfg.interval, "interval", 1, "Step between occurrences")
	fs.StringVar(&cfg.end, "end", "", "Last day of the series (YYYY-MM-DD); the horizon when empty")
	fs.StringVar(&cfg.title, "title", "", "Event title")
	fs.StringVar(&cfg.start, "start", "", "Start time (HH:MM); all-day when empty")
	fs.StringVar(&cfg.finish, "finish", "", "End time (HH:MM)")
	fs.StringVar(&cfg.format, "format", "json", "Output format: json or ics")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return flagConfig{}, err
	}
	if cfg.date == "" {
		return flagConfig{}, errors.New("-date is required")
	}
	return cfg, nil
}

func (f flagConfig) draft() (event.Event, error) {
	typ, err := event.ParseRepeatType(f.repeatType)
	if err != nil {
		return event.Event{}, err
	}

	ev := event.Event{
		Title:     f.title,
		Date:      f.date,
		StartTime: f.start,
		EndTime:   f.finish,
		Repeat:    event.RepeatInfo{Type: typ, Interval: f.interval},
	}
	if f.end != "" {
		ev.Repeat.EndDate = mo.Some(f.end)
	}
	return ev, nil
}
