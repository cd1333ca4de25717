package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/abiiranathan/this-fallback/analyzer/config"
	"github.com/abiiranathan/this-fallback/analyzer/fallback"
	"github.com/abiiranathan/this-fallback/analyzer/logger"
	"github.com/abiiranathan/this-fallback/analyzer/runner"
	"github.com/pkg/errors"
)

// Output is the JSON document written for one run.
type Output struct {
	// Results holds one entry per input file.
	Results []runner.Result `json:"results"`

	// Failed counts the results carrying an error.
	Failed int `json:"failed"`
}

// main is the CLI entry point for the this-fallback pass.
//
// Usage:
//
//	this-fallback [flags] <file.json|dir>...
func main() {
	configFile := flag.String("config", "", "Path to an HCL options file")
	root := flag.String("root", ".", "Directory module names are relative to")
	compress := flag.Bool("compress", false, "Output gzip-compressed JSON")
	watch := flag.Bool("watch", false, "Re-run when input files change")
	debounce := flag.Duration("debounce", 250*time.Millisecond, "Watch debounce interval")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: this-fallback [flags] <file.json|dir>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fail(err)
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		fail(err)
	}
	defer closeLog()

	r := runner.New(cfg.PluginOptions(), log, mustAbs(*root))
	inputs := make([]string, flag.NArg())
	for i, arg := range flag.Args() {
		inputs[i] = mustAbs(arg)
	}

	run := func() {
		files, err := runner.Collect(inputs)
		if err != nil {
			log.Error(err.Error())
			fmt.Fprintln(os.Stderr, err)
			return
		}
		encodeJSON(newOutput(r.Run(files)), *compress)
	}

	run()
	if !*watch {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = watchInputs(ctx, inputs, *debounce, func(changed []string) {
		log.Debug("changed: %v", changed)
		run()
	})
	if err != nil {
		fail(err)
	}
}

func newOutput(results []runner.Result) Output {
	out := Output{Results: results}
	for _, r := range results {
		if r.Error != "" {
			out.Failed++
		}
	}
	return out
}

// openLogger opens the configured log file, or returns a no-op logger when
// logging is disabled.
func openLogger(cfg config.Config) (logger.Logger, func(), error) {
	if !cfg.EnableLogging {
		return logger.Noop(), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	log := logger.New(f, fallback.Name+"-plugin", logger.ParseLevel(cfg.LogLevel))
	return log, func() { _ = f.Close() }, nil
}

// encodeJSON serializes output as JSON and writes it to stdout.
//
// If compress is true, the output is gzip-compressed.
func encodeJSON(output any, compress bool) {
	var w io.Writer = os.Stdout
	var gzWriter *gzip.Writer
	if compress {
		gzWriter = gzip.NewWriter(os.Stdout)
		w = gzWriter
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(output); err != nil {
		panic("failed to encode JSON: " + err.Error())
	}

	if gzWriter != nil {
		if err := gzWriter.Close(); err != nil {
			panic("failed to close gzip writer: " + err.Error())
		}
	}
}

// mustAbs resolves path to an absolute path.
func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic("could not resolve absolute path for " + path + ": " + err.Error())
	}
	return abs
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "this-fallback:", err)
	os.Exit(1)
}
