package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/crease/internal/simulator"
)

// Default configuration constants.
const (
	defaultMatches    = 1
	defaultTopN       = 50
	defaultInterval   = 50 * time.Millisecond
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the engine")
		matches   = flag.Int("matches", defaultMatches, "Number of matches to simulate concurrently")
		format    = flag.String("format", "t20", "Match format, t20 or odi")
		interval  = flag.Duration("interval", defaultInterval, "Pause between snapshots of one match")
		contestID = flag.String("contest", "", "Contest ID whose leaderboard to fetch after the run")
		topN      = flag.Int("top", defaultTopN, "Number of leaderboard entries to fetch")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for simulator output (default: simulation_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulator.ShowHelp()
		return
	}

	if err := simulator.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulator.Config{
		BaseURL:   *baseURL,
		Matches:   *matches,
		Format:    *format,
		Interval:  *interval,
		ContestID: *contestID,
		TopN:      *topN,
		Timeout:   *timeout,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	if err := simulator.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
