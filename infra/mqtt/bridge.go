package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/elevsim/core/model"
	coremon "github.com/kilianp07/elevsim/core/monitoring"
	"github.com/kilianp07/elevsim/infra/logger"
)

// Engine is the part of the simulation driven by MQTT panels.
type Engine interface {
	SubmitFloorCall(floor int, dir model.Direction) error
	SubmitDestination(elevatorID, floor int) error
	Snapshot() model.SimulationState
}

// CallMessage is the payload accepted on <prefix>/call.
type CallMessage struct {
	Floor     int             `json:"floor"`
	Direction model.Direction `json:"direction"`
}

// DestinationMessage is the payload accepted on <prefix>/destination.
type DestinationMessage struct {
	ElevatorID int `json:"elevatorId"`
	Floor      int `json:"floor"`
}

// Bridge forwards hall calls and car buttons received over MQTT to the
// engine and publishes periodic state snapshots.
type Bridge struct {
	cfg    Config
	engine Engine
	cli    pahoClient
	log    logger.Logger
}

// NewBridge connects to the broker and subscribes to the call and
// destination topics. Subscriptions are renewed on reconnect.
func NewBridge(cfg Config, engine Engine) (*Bridge, error) {
	if engine == nil {
		return nil, fmt.Errorf("mqtt bridge: nil engine")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Bridge{cfg: cfg, engine: engine, log: logger.New("mqtt_bridge")}
	cli, err := connect(cfg, b.log, b.subscribe)
	if err != nil {
		return nil, err
	}
	b.cli = cli
	return b, nil
}

func (b *Bridge) subscribe(c paho.Client) {
	subs := []struct {
		topic   string
		qos     byte
		handler paho.MessageHandler
	}{
		{b.cfg.Topic(TopicCall), b.cfg.qos(TopicCall), b.onCall},
		{b.cfg.Topic(TopicDestination), b.cfg.qos(TopicDestination), b.onDestination},
	}
	for _, s := range subs {
		if token := c.Subscribe(s.topic, s.qos, s.handler); token.Wait() && token.Error() != nil {
			b.log.Errorf("subscribe %s error: %v", s.topic, token.Error())
		}
	}
}

func (b *Bridge) onCall(_ paho.Client, msg paho.Message) {
	var m CallMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		b.log.Warnf("failed to decode call: %v", err)
		return
	}
	if err := b.engine.SubmitFloorCall(m.Floor, m.Direction); err != nil {
		b.log.Warnf("call rejected: %v", err)
		return
	}
	b.log.Debugw("call received", map[string]any{"floor": m.Floor, "direction": m.Direction})
}

func (b *Bridge) onDestination(_ paho.Client, msg paho.Message) {
	var m DestinationMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		b.log.Warnf("failed to decode destination: %v", err)
		return
	}
	if err := b.engine.SubmitDestination(m.ElevatorID, m.Floor); err != nil {
		b.log.Warnf("destination rejected: %v", err)
		return
	}
	b.log.Debugw("destination received", map[string]any{"elevator_id": m.ElevatorID, "floor": m.Floor})
}

// PublishState publishes the current snapshot as a retained message.
func (b *Bridge) PublishState() error {
	payload, err := json.Marshal(b.engine.Snapshot())
	if err != nil {
		return fmt.Errorf("mqtt bridge: encode state: %w", err)
	}
	return publish(b.cli, b.cfg, b.log, b.cfg.Topic(TopicState), b.cfg.qos(TopicState), true, payload)
}

// Run publishes snapshots every state interval until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) {
	defer coremon.Recover()
	t := time.NewTicker(b.cfg.StateInterval())
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := b.PublishState(); err != nil {
				b.log.Errorf("state publish: %v", err)
			}
		}
	}
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	if b.cli != nil && b.cli.IsConnected() {
		b.cli.Disconnect(250)
	}
}
