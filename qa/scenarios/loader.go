package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/scheduler"
)

type ConfigDef struct {
	Floors                   int     `yaml:"floors"`
	Elevators                int     `yaml:"elevators"`
	Capacity                 int     `yaml:"capacity"`
	MorningPeak              bool    `yaml:"morning_peak"`
	EveningPeak              bool    `yaml:"evening_peak"`
	PriorityThresholdSeconds float64 `yaml:"priority_threshold_seconds"`
}

// ToModel fills unset fields from the simulation defaults.
func (c ConfigDef) ToModel() model.SimulationConfig {
	cfg := model.DefaultSimulationConfig()
	if c.Floors > 0 {
		cfg.FloorCount = c.Floors
	}
	if c.Elevators > 0 {
		cfg.ElevatorCount = c.Elevators
	}
	if c.Capacity > 0 {
		cfg.ElevatorCapacity = c.Capacity
	}
	cfg.MorningPeak = c.MorningPeak
	cfg.EveningPeak = c.EveningPeak
	return cfg
}

func (c ConfigDef) Scheduler() scheduler.Config {
	return scheduler.Config{PriorityThresholdSeconds: c.PriorityThresholdSeconds}
}

type ElevatorDef struct {
	ID           int    `yaml:"id"`
	Floor        int    `yaml:"floor"`
	Direction    string `yaml:"direction"`
	Passengers   int    `yaml:"passengers"`
	Destinations []int  `yaml:"destinations"`
}

func (e ElevatorDef) ToModel() model.ElevatorState {
	car := model.NewElevator(e.ID)
	car.CurrentFloor = e.Floor
	if e.Direction != "" {
		car.Direction = model.Direction(e.Direction)
	}
	car.Passengers = e.Passengers
	if len(e.Destinations) > 0 {
		car.DestinationFloors = append([]int(nil), e.Destinations...)
	}
	return car
}

type CallDef struct {
	Floor         int     `yaml:"floor"`
	Direction     string  `yaml:"direction"`
	WaitedSeconds float64 `yaml:"waited_seconds"`
}

func (c CallDef) ToModel(now time.Time) model.FloorCall {
	return model.FloorCall{
		Floor:     c.Floor,
		Direction: model.Direction(c.Direction),
		CreatedAt: now.Add(-time.Duration(c.WaitedSeconds * float64(time.Second))),
	}
}

type DestinationDef struct {
	Elevator int `yaml:"elevator"`
	Floor    int `yaml:"floor"`
}

type ExpectedAssignment struct {
	Floor    int    `yaml:"floor"`
	Elevator int    `yaml:"elevator"`
	Rule     string `yaml:"rule"`
}

type Expected struct {
	Assignments  []ExpectedAssignment `yaml:"assignments"`
	Pending      int                  `yaml:"pending"`
	Ignored      int                  `yaml:"ignored"`
	Destinations map[int][]int        `yaml:"destinations,omitempty"`
}

// Scenario is one scheduling pass over a hand-built building state.
type Scenario struct {
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description,omitempty"`
	Config       ConfigDef        `yaml:"config"`
	Elevators    []ElevatorDef    `yaml:"elevators"`
	Calls        []CallDef        `yaml:"calls"`
	Destinations []DestinationDef `yaml:"destinations,omitempty"`
	Expected     Expected         `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	return &sc, nil
}
