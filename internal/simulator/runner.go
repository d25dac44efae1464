package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/crease/pkg/logger"
)

// settleWait is how long the runner waits after the final snapshots
// before inspecting results, covering the settlement sweep interval.
const settleWait = 5 * time.Second

// Run drives the configured number of simulated matches against a
// running engine and reports what happened.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting match simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("matches", config.Matches),
		logger.String("format", config.Format),
		logger.Duration("interval", config.Interval),
		logger.Bool("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	scripts := buildMatchScripts(config)
	stats.MatchesSimulated = len(scripts)

	if err := playScripts(ctx, config, scripts, stats); err != nil {
		return fmt.Errorf("match playback failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for settlement to catch up")
	time.Sleep(settleWait)

	if err := reportEngineStats(ctx, config); err != nil {
		logger.Get().Warn(ctx, "failed to fetch engine stats", logger.Error(err))
	}

	if config.ContestID != "" {
		if err := reportLeaderboard(ctx, config, stats); err != nil {
			logger.Get().Warn(ctx, "failed to fetch leaderboard", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed")
	return nil
}

// playScripts replays each match script in its own goroutine. Snapshots
// within one match go out in order; matches run concurrently, which is
// exactly the shape of a real multi-match feed.
func playScripts(ctx context.Context, config *Config, scripts []matchScript, stats *Stats) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/telemetry"

	var (
		sent      int64
		accepted  int64
		rejected  int64
		throttled int64
	)

	var wg sync.WaitGroup
	for _, script := range scripts {
		wg.Add(1)
		go func(script matchScript) {
			defer wg.Done()

			for _, snap := range script.Snapshots {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddInt64(&sent, 1)
				switch submitSnapshot(ctx, client, url, snap) {
				case statusAccepted:
					atomic.AddInt64(&accepted, 1)
				case statusTooManyRequests:
					atomic.AddInt64(&throttled, 1)
				default:
					atomic.AddInt64(&rejected, 1)
				}

				if config.Interval > 0 {
					time.Sleep(config.Interval)
				}
			}

			if config.Verbose {
				logger.Get().Info(ctx, "match playback finished", logger.String("matchID", script.MatchID))
			}
		}(script)
	}
	wg.Wait()

	stats.SnapshotsSent = int(atomic.LoadInt64(&sent))
	stats.SnapshotsAccepted = int(atomic.LoadInt64(&accepted))
	stats.SnapshotsRejected = int(atomic.LoadInt64(&rejected))
	stats.SnapshotsThrottled = int(atomic.LoadInt64(&throttled))

	if stats.SnapshotsAccepted == 0 {
		return fmt.Errorf("engine accepted none of %d snapshots", stats.SnapshotsSent)
	}
	return nil
}

// submitSnapshot posts one snapshot and returns the HTTP status code,
// or zero when the request itself failed.
func submitSnapshot(ctx context.Context, client *httpClient, url string, snap RawSnapshot) int {
	resp, err := client.Post(ctx, url, snap)
	if err != nil {
		return 0
	}
	_, _ = readResponseBody(resp)
	return resp.StatusCode
}

// checkServiceHealth verifies the engine is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// reportEngineStats fetches and logs the engine's operational counters.
func reportEngineStats(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/stats")
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read stats response: %w", err)
	}
	if resp.StatusCode != statusOK {
		return fmt.Errorf("stats request failed with status: %d", resp.StatusCode)
	}

	var engineStats map[string]any
	if err := json.Unmarshal(body, &engineStats); err != nil {
		return fmt.Errorf("failed to decode stats: %w", err)
	}

	logger.Get().Info(ctx, "engine stats", logger.Any("stats", engineStats))
	return nil
}

// reportLeaderboard fetches the configured contest's standings and
// sanity-checks their ordering.
func reportLeaderboard(ctx context.Context, config *Config, stats *Stats) error {
	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/contests/%s/leaderboard?limit=%d", config.BaseURL, config.ContestID, config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read leaderboard response: %w", err)
	}
	if resp.StatusCode != statusOK {
		return fmt.Errorf("leaderboard request failed with status: %d", resp.StatusCode)
	}

	var page LeaderboardResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return fmt.Errorf("failed to decode leaderboard: %w", err)
	}

	stats.LeaderboardEntries = page.Total
	if err := verifyLeaderboard(page.Entries); err != nil {
		logger.Get().Warn(ctx, "leaderboard consistency warning", logger.Error(err))
	}

	for _, entry := range page.Entries {
		logger.Get().Info(ctx, "leaderboard entry",
			logger.Int("rank", entry.Rank),
			logger.String("userID", entry.UserID),
			logger.Int("totalScore", entry.TotalScore),
			logger.Int("percentile", entry.Percentile))
	}
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var snapshotsPerSecond float64
	if stats.Duration > 0 {
		snapshotsPerSecond = float64(stats.SnapshotsSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("matchesSimulated", stats.MatchesSimulated),
		logger.Int("snapshotsSent", stats.SnapshotsSent),
		logger.Int("snapshotsAccepted", stats.SnapshotsAccepted),
		logger.Int("snapshotsRejected", stats.SnapshotsRejected),
		logger.Int("snapshotsThrottled", stats.SnapshotsThrottled),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("snapshotsPerSecond", snapshotsPerSecond))
}
