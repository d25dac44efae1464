package simulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/crease/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "simulation_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the match simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Crease Match Simulator
======================

Replays scripted cricket matches against a running contest engine by
posting telemetry snapshots, then inspects the engine's counters and,
optionally, a contest's settled leaderboard.

Usage:
  go run cmd/simulate/main.go [options]

Options:
  -url string
        Base URL of the engine (default "http://localhost:9080")
  -matches int
        Number of matches to simulate concurrently (default 1)
  -format string
        Match format, t20 or odi (default "t20")
  -interval duration
        Pause between snapshots of one match (default 50ms)
  -contest string
        Contest ID whose leaderboard to fetch after the run
  -top int
        Number of leaderboard entries to fetch (default 50)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for simulator output (default: simulation_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Replay one T20 match
  go run cmd/simulate/main.go

  # Replay five ODI matches at full speed
  go run cmd/simulate/main.go -matches 5 -format odi -interval 0

  # Replay a match and inspect a contest afterwards
  go run cmd/simulate/main.go -contest c1 -top 10
`)
}
