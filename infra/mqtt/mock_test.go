package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type sentMessage struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeBroker stands in for a connected paho client. Methods the package
// never calls are left to the nil embedded interface.
type fakeBroker struct {
	paho.Client

	mu         sync.Mutex
	opts       *paho.ClientOptions
	subscribed map[string]byte
	handlers   map[string]paho.MessageHandler
	published  []sentMessage
	publishErr []error
	connectErr error
}

func newMockClient() *fakeBroker {
	return &fakeBroker{subscribed: map[string]byte{}, handlers: map[string]paho.MessageHandler{}}
}

// install routes newMQTTClient to f and returns the restore func.
func (f *fakeBroker) install() func() {
	prev := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient {
		f.opts = o
		return f
	}
	return func() { newMQTTClient = prev }
}

func (f *fakeBroker) IsConnected() bool { return true }
func (f *fakeBroker) Disconnect(uint)   {}

func (f *fakeBroker) Connect() paho.Token {
	if f.connectErr != nil {
		return doneToken{err: f.connectErr}
	}
	if f.opts != nil && f.opts.OnConnect != nil {
		f.opts.OnConnect(f)
	}
	return doneToken{}
}

func (f *fakeBroker) Publish(topic string, qos byte, retained bool, payload any) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, _ := payload.([]byte)
	f.published = append(f.published, sentMessage{topic: topic, qos: qos, retained: retained, payload: body})
	var err error
	if len(f.publishErr) > 0 {
		err, f.publishErr = f.publishErr[0], f.publishErr[1:]
	}
	return doneToken{err: err}
}

func (f *fakeBroker) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed[topic] = qos
	f.handlers[topic] = cb
	return doneToken{}
}

// deliver hands payload to whatever handler subscribed to topic.
func (f *fakeBroker) deliver(topic, payload string) {
	f.mu.Lock()
	h := f.handlers[topic]
	f.mu.Unlock()
	if h != nil {
		h(f, inbound{topic: topic, body: []byte(payload)})
	}
}

func (f *fakeBroker) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.published...)
}

// doneToken is a token that has already completed.
type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// inbound satisfies paho.Message for handler tests.
type inbound struct {
	paho.Message
	topic string
	body  []byte
}

func (m inbound) Topic() string   { return m.topic }
func (m inbound) Payload() []byte { return m.body }
