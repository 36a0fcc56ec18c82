package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"greader/feed"
	"greader/internal/app"
	"greader/internal/config"
	"greader/internal/logger"
	"greader/reader"
)

const usage = `usage: greader <command> [flags]

commands:
  fetch   print entries of one Google Reader category
  serve   run the archive worker and HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	switch os.Args[1] {
	case "fetch":
		runFetch(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	category := fs.String("category", string(reader.CategoryStarred), "category to fetch")
	count := fs.Int("n", 0, "number of entries (0 means service default)")
	since := fs.Duration("since", 0, "only entries newer than this duration, oldest first")
	asJSON := fs.Bool("json", false, "print entries as JSON")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}
	if err := cfg.ValidateReader(); err != nil {
		log.Fatalf("FATAL: invalid config: %v", err)
	}
	c, err := reader.ParseCategory(*category)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	appLogger, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("FATAL: could not setup logger: %v", err)
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Reader.TimeoutDuration())
	defer cancel()
	client, err := app.NewReaderClient(ctx, cfg.Reader, appLogger)
	if err != nil {
		appLogger.Error("Login failed", slog.String("component", "cli"), slog.Any("error", err))
		os.Exit(1)
	}
	opts := reader.ListOptions{Count: *count}
	if *since > 0 {
		opts.Since = time.Now().Add(-*since)
	}
	f, err := client.Items(ctx, c, opts)
	if err != nil {
		appLogger.Error("Fetch failed",
			slog.String("component", "cli"),
			slog.String("category", string(c)),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
	if *asJSON {
		err = printJSON(os.Stdout, f)
	} else {
		err = printEntries(os.Stdout, f)
	}
	if err != nil {
		log.Fatalf("FATAL: could not write output: %v", err)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid config: %v", err)
	}
	appLogger, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("FATAL: could not setup logger: %v", err)
	}
	defer closeLog()
	slog.SetDefault(appLogger)

	a, err := app.New(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Error("Startup failed", slog.String("component", "app"), slog.Any("error", err))
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		appLogger.Error("Application stopped with error", slog.String("component", "app"), slog.Any("error", err))
		os.Exit(1)
	}
}

// printEntries выводит записи в человекочитаемом виде: дата, заголовок, ссылка, текст.
func printEntries(w io.Writer, f *feed.Feed) error {
	if f.Len() == 0 {
		_, err := fmt.Fprintln(w, "no entries")
		return err
	}
	for _, e := range f.Entries {
		date := "-"
		if !e.Published.IsZero() {
			date = e.Published.Format(time.RFC3339)
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", date, e.Title); err != nil {
			return err
		}
		if e.Link != "" {
			fmt.Fprintf(w, "    %s\n", e.Link)
		}
		if text := truncate(e.Text(), 200); text != "" {
			fmt.Fprintf(w, "    %s\n", text)
		}
	}
	return nil
}

func printJSON(w io.Writer, f *feed.Feed) error {
	entries := []feed.Entry{}
	if f != nil && f.Entries != nil {
		entries = f.Entries
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
