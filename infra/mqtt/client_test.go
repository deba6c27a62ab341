package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSelfSigned writes a throwaway certificate, its key and a CA bundle
// holding the same certificate.
func writeSelfSigned(t *testing.T) (cert, key, ca string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "elevsim-test"},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)

	dir := t.TempDir()
	files := map[string]*pem.Block{
		"cert.pem": {Type: "CERTIFICATE", Bytes: der},
		"key.pem":  {Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)},
		"ca.pem":   {Type: "CERTIFICATE", Bytes: der},
	}
	for name, block := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), pem.EncodeToMemory(block), 0o600))
	}
	return filepath.Join(dir, "cert.pem"), filepath.Join(dir, "key.pem"), filepath.Join(dir, "ca.pem")
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := writeSelfSigned(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, tlsCfg.Certificates)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)
	assert.True(t, opts.AutoReconnect)

	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", AuthMethod: "tls", Username: "u"})
	require.NoError(t, err)
	assert.Empty(t, opts.Username)
}

func TestLWTConfigured(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", LWTTopic: "elevsim/status", LWTPayload: "offline", LWTQoS: 1})
	require.NoError(t, err)
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "elevsim/status", opts.WillTopic)
	assert.Equal(t, "offline", string(opts.WillPayload))
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, DefaultTopicPrefix, cfg.TopicPrefix)
	assert.True(t, strings.HasPrefix(cfg.ClientID, "elevsim-"))
	assert.Equal(t, time.Second, cfg.StateInterval())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "elevsim/call", cfg.Topic(TopicCall))
	assert.False(t, cfg.Enabled())

	cfg = Config{TopicPrefix: "tower-a", ClientID: "fixed", StateIntervalMS: 250}
	cfg.SetDefaults()
	assert.Equal(t, "fixed", cfg.ClientID)
	assert.Equal(t, "tower-a/state", cfg.Topic(TopicState))
	assert.Equal(t, 250*time.Millisecond, cfg.StateInterval())
}

func TestConfigValidate(t *testing.T) {
	checks := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"empty", Config{}, true},
		{"qos", Config{QoS: map[string]byte{"call": 3}}, false},
		{"lwt qos", Config{LWTQoS: 5}, false},
		{"negative interval", Config{StateIntervalMS: -1}, false},
		{"tls without files", Config{UseTLS: true}, false},
	}
	for _, c := range checks {
		err := c.cfg.Validate()
		if c.ok {
			assert.NoError(t, err, c.name)
		} else {
			assert.Error(t, err, c.name)
		}
	}
}
