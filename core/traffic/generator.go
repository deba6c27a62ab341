// Package traffic synthesises floor calls at a configured arrival rate.
package traffic

import (
	"time"

	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/random"
)

const (
	// MorningLobbyProbability is the share of lobby up-calls under morning peak.
	MorningLobbyProbability = 0.7
	// EveningDownProbability is the share of down-calls toward the lobby under evening peak.
	EveningDownProbability = 0.6
)

// Generated is a synthesised call plus the trip destination used to derive it.
// Only the call is queued; the destination is informational.
type Generated struct {
	Call        model.FloorCall
	Destination int
}

// Generator emits random calls, at most one per arrival interval.
type Generator struct {
	rng      random.Source
	lastCall time.Time
}

// NewGenerator returns a Generator drawing from rng.
func NewGenerator(rng random.Source) *Generator {
	return &Generator{rng: rng}
}

// Reset forgets the last emission so the next Generate fires immediately.
func (g *Generator) Reset() { g.lastCall = time.Time{} }

// Generate returns a new call when at least one arrival interval elapsed
// since the previous one. ok is false when the call is rate limited.
func (g *Generator) Generate(cfg model.SimulationConfig, now time.Time) (Generated, bool) {
	if !g.lastCall.IsZero() && now.Sub(g.lastCall) < cfg.CallInterval() {
		return Generated{}, false
	}
	g.lastCall = now
	return g.draw(cfg, now), true
}

func (g *Generator) draw(cfg model.SimulationConfig, now time.Time) Generated {
	upper := cfg.FloorCount - 1
	if cfg.MorningPeak && g.rng.Float64() < MorningLobbyProbability {
		return Generated{
			Call:        model.FloorCall{Floor: 0, Direction: model.DirectionUp, CreatedAt: now},
			Destination: g.rng.Intn(upper) + 1,
		}
	}
	if cfg.EveningPeak && g.rng.Float64() < EveningDownProbability {
		return Generated{
			Call:        model.FloorCall{Floor: g.rng.Intn(upper) + 1, Direction: model.DirectionDown, CreatedAt: now},
			Destination: 0,
		}
	}
	origin := g.rng.Intn(cfg.FloorCount)
	// draw among the other floors so dest never equals origin
	dest := g.rng.Intn(upper)
	if dest >= origin {
		dest++
	}
	dir := model.DirectionDown
	if dest > origin {
		dir = model.DirectionUp
	}
	return Generated{
		Call:        model.FloorCall{Floor: origin, Direction: dir, CreatedAt: now},
		Destination: dest,
	}
}
