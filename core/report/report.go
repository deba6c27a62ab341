// Package report derives display metrics from a simulation snapshot and
// renders them as a markdown report.
package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/elevsim/core/model"
)

// Metrics are the figures shown in the report.
type Metrics struct {
	ActiveCalls         int     `json:"activeRequests"`
	ActiveElevators     int     `json:"activeElevators"`
	TotalElevators      int     `json:"totalElevators"`
	AverageWaitSeconds  float64 `json:"avgWaitTime"`
	P90WaitSeconds      float64 `json:"p90WaitTime"`
	MaxWaitSeconds      float64 `json:"maxWaitTime"`
	Utilization         int     `json:"utilization"`
	Occupancy           float64 `json:"occupancy"`
	PendingDestinations int     `json:"destinationRequests"`
	Pattern             string  `json:"trafficPattern"`
}

// Compute derives Metrics from state at time now.
func Compute(state model.SimulationState, now time.Time) Metrics {
	m := Metrics{
		ActiveCalls:         len(state.FloorCalls),
		TotalElevators:      len(state.Elevators),
		PendingDestinations: len(state.DestinationRequests),
		Pattern:             state.Config.Pattern().String(),
	}

	if len(state.FloorCalls) > 0 {
		waits := make([]float64, len(state.FloorCalls))
		for i, c := range state.FloorCalls {
			waits[i] = c.Waited(now).Seconds()
		}
		sort.Float64s(waits)
		m.AverageWaitSeconds = stat.Mean(waits, nil)
		m.P90WaitSeconds = stat.Quantile(0.9, stat.Empirical, waits, nil)
		m.MaxWaitSeconds = waits[len(waits)-1]
	}

	if len(state.Elevators) > 0 {
		load := make([]float64, len(state.Elevators))
		for i, e := range state.Elevators {
			if !e.Idle() || len(e.DestinationFloors) > 0 {
				m.ActiveElevators++
			}
			if state.Config.ElevatorCapacity > 0 {
				load[i] = float64(e.Passengers) / float64(state.Config.ElevatorCapacity)
			}
		}
		m.Utilization = int(math.Round(float64(m.ActiveElevators) / float64(len(state.Elevators)) * 100))
		m.Occupancy = stat.Mean(load, nil)
	}
	return m
}

// Markdown renders the report for state at time now.
func Markdown(state model.SimulationState, now time.Time) string {
	m := Compute(state, now)
	cfg := state.Config
	var b strings.Builder
	b.WriteString("# Elevator Simulation Report\n")
	b.WriteString("## Performance Metrics\n")
	fmt.Fprintf(&b, "- **Active Requests**: %d\n", m.ActiveCalls)
	fmt.Fprintf(&b, "- **Active Elevators**: %d / %d\n", m.ActiveElevators, m.TotalElevators)
	fmt.Fprintf(&b, "- **Average Wait Time**: %.1fs\n", m.AverageWaitSeconds)
	fmt.Fprintf(&b, "- **90th Percentile Wait Time**: %.1fs\n", m.P90WaitSeconds)
	fmt.Fprintf(&b, "- **Elevator Utilization**: %d%%\n", m.Utilization)
	fmt.Fprintf(&b, "- **Average Occupancy**: %.0f%%\n", m.Occupancy*100)
	b.WriteString("\n## System Status\n")
	fmt.Fprintf(&b, "- **Current Floor Requests**: %d\n", m.ActiveCalls)
	fmt.Fprintf(&b, "- **Pending Destinations**: %d\n", m.PendingDestinations)
	fmt.Fprintf(&b, "- **Simulation Speed**: %sx\n", number(cfg.TickRate))
	fmt.Fprintf(&b, "- **Request Frequency**: %s/sec\n", number(cfg.CallArrivalRate))
	b.WriteString("\n## Configuration\n")
	fmt.Fprintf(&b, "- **Floors**: %d\n", cfg.FloorCount)
	fmt.Fprintf(&b, "- **Elevators**: %d\n", cfg.ElevatorCount)
	fmt.Fprintf(&b, "- **Capacity**: %d persons/elevator\n", cfg.ElevatorCapacity)
	fmt.Fprintf(&b, "- **Traffic Pattern**: %s\n", m.Pattern)
	return b.String()
}

// number formats f with the fewest digits that round-trip.
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
