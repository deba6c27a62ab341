package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/infra/logger"
)

// CallPublisher sends hall calls and car buttons to a running bridge.
type CallPublisher struct {
	cfg Config
	cli pahoClient
	log logger.Logger
}

// NewCallPublisher connects with a client id distinct from the service's.
func NewCallPublisher(cfg Config) (*CallPublisher, error) {
	cfg.SetDefaults()
	cfg.ClientID = fmt.Sprintf("%s-pub-%s", cfg.ClientID, uuid.NewString()[:8])
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &CallPublisher{cfg: cfg, log: logger.New("mqtt_publisher")}
	cli, err := connect(cfg, p.log, nil)
	if err != nil {
		return nil, err
	}
	p.cli = cli
	return p, nil
}

// PublishCall sends a hall call. dir must be UP or DOWN.
func (p *CallPublisher) PublishCall(floor int, dir model.Direction) error {
	if dir != model.DirectionUp && dir != model.DirectionDown {
		return fmt.Errorf("direction %q: %w", dir, model.ErrInvalidDirection)
	}
	if floor < 0 {
		return fmt.Errorf("floor %d: %w", floor, model.ErrInvalidFloor)
	}
	payload, err := json.Marshal(CallMessage{Floor: floor, Direction: dir})
	if err != nil {
		return err
	}
	return publish(p.cli, p.cfg, p.log, p.cfg.Topic(TopicCall), p.cfg.qos(TopicCall), false, payload)
}

// PublishDestination sends a car button press.
func (p *CallPublisher) PublishDestination(elevatorID, floor int) error {
	if floor < 0 {
		return fmt.Errorf("floor %d: %w", floor, model.ErrInvalidFloor)
	}
	payload, err := json.Marshal(DestinationMessage{ElevatorID: elevatorID, Floor: floor})
	if err != nil {
		return err
	}
	return publish(p.cli, p.cfg, p.log, p.cfg.Topic(TopicDestination), p.cfg.qos(TopicDestination), false, payload)
}

// Disconnect gracefully closes the MQTT connection.
func (p *CallPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
