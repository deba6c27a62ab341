// Package export renders simulation snapshots as JSON, CSV or an HTML chart.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/elevsim/core/model"
)

// WriteJSON writes the snapshot to w in JSON format.
func WriteJSON(w io.Writer, state model.SimulationState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}

// WriteCSV writes one row per elevator. Queued stops are joined with ';'.
func WriteCSV(w io.Writer, state model.SimulationState) error {
	cw := csv.NewWriter(w)
	header := []string{"elevator_id", "floor", "direction", "door", "passengers", "capacity", "destinations"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range state.Elevators {
		stops := make([]string, len(e.DestinationFloors))
		for i, f := range e.DestinationFloors {
			stops[i] = strconv.Itoa(f)
		}
		rec := []string{
			strconv.Itoa(e.ID),
			strconv.Itoa(e.CurrentFloor),
			string(e.Direction),
			string(e.DoorPhase),
			strconv.Itoa(e.Passengers),
			strconv.Itoa(state.Config.ElevatorCapacity),
			strings.Join(stops, ";"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// OccupancyChartHTML renders a bar chart of passengers and queued stops per car.
func OccupancyChartHTML(state model.SimulationState) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Elevator Occupancy",
			Subtitle: fmt.Sprintf("capacity %d, %d pending calls", state.Config.ElevatorCapacity, len(state.FloorCalls)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Elevator"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)

	xAxis := make([]string, 0, len(state.Elevators))
	passengers := make([]opts.BarData, 0, len(state.Elevators))
	stops := make([]opts.BarData, 0, len(state.Elevators))
	for _, e := range state.Elevators {
		xAxis = append(xAxis, fmt.Sprintf("#%d (floor %d)", e.ID, e.CurrentFloor))
		passengers = append(passengers, opts.BarData{Value: e.Passengers})
		stops = append(stops, opts.BarData{Value: len(e.DestinationFloors)})
	}
	bar.SetXAxis(xAxis).
		AddSeries("Passengers", passengers).
		AddSeries("Queued stops", stops)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %v", err)
	}
	return buf.String(), nil
}
