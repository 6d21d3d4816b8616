package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ayusman/battrack/internal/app"
	"github.com/ayusman/battrack/internal/config"
	"github.com/ayusman/battrack/internal/logging"
	"github.com/ayusman/battrack/internal/server"
	"github.com/ayusman/battrack/internal/store"
)

const usage = `Usage:
  battrack serve                     start the HTTP API
  battrack analyze <input> <output>  analyze one video and print the summary`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := config.Load("."); err != nil {
		fmt.Fprintf(os.Stderr, "battrack: %v\n", err)
		os.Exit(1)
	}

	dataDir := config.GetString("dataDir")

	var file io.Writer
	if f, err := logging.OpenFile(dataDir); err == nil {
		defer f.Close()
		file = f
	} else {
		fmt.Fprintf(os.Stderr, "battrack: log file disabled: %v\n", err)
	}
	log := logging.New(config.GetString("logLevel"), os.Stderr, file)

	var err error
	switch os.Args[1] {
	case "serve":
		err = serve(log, dataDir)
	case "analyze":
		if len(os.Args) != 4 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		err = analyze(log, dataDir, os.Args[2], os.Args[3])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("battrack failed")
	}
}

// newAnalyzer opens the store and starts the detectors.
func newAnalyzer(log zerolog.Logger, dataDir string) (*app.Analyzer, *store.Store, error) {
	st, err := store.Open(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize store: %w", err)
	}

	models := config.Detectors()
	detectors, err := app.NewYOLODetectors(models.Bat, models.Ball, models.Stump, models.Pose)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	analyzer := app.New(app.Config{
		Detectors: detectors,
		Analysis:  config.Analysis(log),
		Store:     st,
		Logger:    log,
	})
	return analyzer, st, nil
}

func serve(log zerolog.Logger, dataDir string) error {
	analyzer, st, err := newAnalyzer(log, dataDir)
	if err != nil {
		return err
	}
	defer st.Close()
	defer analyzer.Close()

	webDir := config.GetString("server.staticDir")
	if webDir == "" {
		webDir = findWebDir(dataDir)
	}
	if webDir != "" {
		log.Info().Str("dir", webDir).Msg("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Analyzer:  analyzer,
		UploadDir: config.GetString("server.uploadDir"),
		OutputDir: config.GetString("server.outputDir"),
		Logger:    log,
	})

	return srv.ListenAndServe(config.GetString("server.addr"))
}

func analyze(log zerolog.Logger, dataDir, input, output string) error {
	analyzer, st, err := newAnalyzer(log, dataDir)
	if err != nil {
		return err
	}
	defer st.Close()
	defer analyzer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := analyzer.Analyze(ctx, input, output, nil)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
