package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/wormhole/telemetry"
)

// HeadlessOptions configures a run of plays against a synthetic clock.
type HeadlessOptions struct {
	Plays     int
	FrameRate int           // Host frames per second of synthetic time
	Limit     time.Duration // Longest a single play may take
	Start     time.Time
}

// RunHeadless plays the animation Plays times back to back, ticking g at
// FrameRate with no window, and returns every scored result. A play that
// exceeds Limit is reset and yields no result.
func RunHeadless(g *Game, opts HeadlessOptions) []telemetry.ScoreResult {
	rate := opts.FrameRate
	if rate <= 0 {
		rate = 60
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 2 * time.Minute
	}
	frame := time.Second / time.Duration(rate)
	now := opts.Start

	var results []telemetry.ScoreResult
	for i := 0; i < opts.Plays; i++ {
		before := len(g.Results())
		if !g.Play(now) {
			slog.Warn("headless play refused", "play", i)
			break
		}
		begin := now
		for g.Active() || g.Settling() {
			now = now.Add(frame)
			g.Tick(now)
			if now.Sub(begin) >= limit {
				slog.Warn("headless play exceeded limit", "play", i, "limit_ms", limit.Milliseconds())
				g.Reset(now)
				break
			}
		}
		if len(g.Results()) > before {
			results = append(results, g.Results()[len(g.Results())-1])
		}
		// Keep the meter warm between plays
		now = now.Add(frame)
		g.Tick(now)
	}
	return results
}
