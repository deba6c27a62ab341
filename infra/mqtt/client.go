package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremon "github.com/kilianp07/elevsim/core/monitoring"
	"github.com/kilianp07/elevsim/infra/logger"
)

const (
	DefaultTopicPrefix   = "elevsim"
	DefaultStateInterval = time.Second

	TopicCall        = "call"
	TopicDestination = "destination"
	TopicState       = "state"
)

// Config defines the connection parameters for the Paho MQTT client.
// An empty Broker disables MQTT.
type Config struct {
	Broker          string          `json:"broker"`
	ClientID        string          `json:"client_id"`
	Username        string          `json:"username"`
	Password        string          `json:"password"`
	UseTLS          bool            `json:"use_tls"`
	ClientCert      string          `json:"client_cert"`
	ClientKey       string          `json:"client_key"`
	CABundle        string          `json:"ca_bundle"`
	AuthMethod      string          `json:"auth_method"`
	QoS             map[string]byte `json:"qos"`
	TopicPrefix     string          `json:"topic_prefix"`
	StateIntervalMS int             `json:"state_interval_ms"`
	LWTTopic        string          `json:"lwt_topic"`
	LWTPayload      string          `json:"lwt_payload"`
	LWTQoS          byte            `json:"lwt_qos"`
	LWTRetain       bool            `json:"lwt_retain"`
	MaxRetries      int             `json:"max_retries"`
	BackoffMS       int             `json:"backoff_ms"`
	TLSConfig       *tls.Config     `json:"-"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	if c.ClientID == "" {
		c.ClientID = "elevsim-" + uuid.NewString()[:8]
	}
	if c.StateIntervalMS == 0 {
		c.StateIntervalMS = int(DefaultStateInterval / time.Millisecond)
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// Validate checks the configuration values.
func (c Config) Validate() error {
	for k, q := range c.QoS {
		if q > 2 {
			return fmt.Errorf("mqtt: qos %q must be 0, 1 or 2", k)
		}
	}
	if c.LWTQoS > 2 {
		return fmt.Errorf("mqtt: lwt_qos must be 0, 1 or 2")
	}
	if c.StateIntervalMS < 0 || c.MaxRetries < 0 || c.BackoffMS < 0 {
		return fmt.Errorf("mqtt: state_interval_ms, max_retries and backoff_ms must not be negative")
	}
	if c.UseTLS && c.TLSConfig == nil && (c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "") {
		return fmt.Errorf("mqtt: tls config requires client_cert, client_key and ca_bundle")
	}
	return nil
}

// Topic returns the full topic for name under the configured prefix.
func (c Config) Topic(name string) string {
	prefix := c.TopicPrefix
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return prefix + "/" + name
}

// StateInterval is the period between snapshot publications.
func (c Config) StateInterval() time.Duration {
	if c.StateIntervalMS <= 0 {
		return DefaultStateInterval
	}
	return time.Duration(c.StateIntervalMS) * time.Millisecond
}

func (c Config) qos(key string) byte {
	if q, ok := c.QoS[key]; ok {
		return q
	}
	return 0
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// connect builds a client from cfg and connects it. onConnect runs after
// every successful (re)connection.
func connect(cfg Config, log logger.Logger, onConnect func(paho.Client)) (pahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
		if onConnect != nil {
			onConnect(c)
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt client: %w", token.Error())
	}
	return c, nil
}

// publish sends payload with exponential backoff between attempts. The final
// failure is reported to the monitor.
func publish(cli pahoClient, cfg Config, log logger.Logger, topic string, qos byte, retained bool, payload []byte) error {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	backoff := time.Duration(cfg.BackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	var publishErr error
	for attempt := 0; attempt <= retries; attempt++ {
		token := cli.Publish(topic, qos, retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		log.Errorf("publish attempt %d on %s failed: %v", attempt+1, topic, publishErr)
		if attempt < retries {
			time.Sleep(backoff * time.Duration(1<<attempt))
		}
	}
	err := fmt.Errorf("mqtt publish %s: %w", topic, publishErr)
	coremon.CaptureException(err, coremon.Tags{"module": "mqtt", "topic": topic})
	return err
}
