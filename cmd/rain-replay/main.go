// Command rain-replay runs a recording of raw sensor samples through the
// rain pipeline and prints the emitted readings with summary statistics.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/itohio/gorain/pkg/rain"
	"go.uber.org/zap"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		envFlag    = flag.String("env", ".env", "Environment file with RAIN_* overrides")
		inputFlag  = flag.String("i", "-", "Recording to replay (CSV, '-' for stdin)")
		rateFlag   = flag.Duration("rate", 20*time.Millisecond, "Sample spacing for rows without timestamps")
		quietFlag  = flag.Bool("q", false, "Print only the summary")
		debugFlag  = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	var (
		zl  *zap.Logger
		err error
	)
	if *debugFlag {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	cfg, err := loadConfig(*configFlag, *envFlag)
	if err != nil {
		logger.Fatalw("failed to load configuration", "file", *configFlag, "env", *envFlag, "error", err)
	}

	var in io.Reader = os.Stdin
	if *inputFlag != "-" {
		f, err := os.Open(*inputFlag)
		if err != nil {
			logger.Fatalw("failed to open recording", "file", *inputFlag, "error", err)
		}
		defer f.Close()
		in = f
	}

	samples, err := readRecording(in, *rateFlag)
	if err != nil {
		logger.Fatalw("failed to read recording", "file", *inputFlag, "error", err)
	}
	logger.Debugw("recording loaded", "samples", len(samples), "duration", samples[len(samples)-1].Uptime)

	report := buildReport(samples, rain.WithInterval(cfg.Pipeline.Interval))
	if err := writeReport(os.Stdout, report, *quietFlag); err != nil {
		logger.Fatalw("failed to write report", "error", err)
	}
}
