package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// DefaultBroker is the public EMQX broker the sensor nodes publish to.
const DefaultBroker = "tcp://broker.emqx.io:1883"

const (
	defaultKeepAlive        = 60 * time.Second
	defaultConnectTimeout   = 30 * time.Second
	defaultSubscribeTimeout = 10 * time.Second
	defaultRetryInterval    = 5 * time.Second
	defaultEventBuffer      = 256
	maxReconnectInterval    = 2 * time.Minute
	disconnectQuiesceMS     = 250
	maxQoS                  = 2
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// QoS is requested for every subscription.
	QoS byte `json:"qos"`
	// PersistentSession asks the broker to keep the session across
	// reconnects (clean session off).
	PersistentSession bool `json:"persistent_session"`

	KeepAliveSeconds        int `json:"keep_alive_seconds"`
	ConnectTimeoutSeconds   int `json:"connect_timeout_seconds"`
	SubscribeTimeoutSeconds int `json:"subscribe_timeout_seconds"`
	// RetryIntervalSeconds is the wait between failed initial connection
	// attempts. Reconnects after a lost connection use Paho's own backoff.
	RetryIntervalSeconds int `json:"retry_interval_seconds"`
	// EventBuffer is the capacity of the transport event channel. Paho
	// delivers messages in order, so once the buffer is full its inbound
	// loop waits for the logger. Messages that arrive while the logger
	// waits for a SUBACK during resubscription must fit in the buffer, or
	// that SUBACK can time out.
	EventBuffer int `json:"event_buffer"`

	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	TLSConfig  *tls.Config `json:"-"`
}

// SetDefaults fills unset fields. An empty client ID is replaced by a
// generated one so that two loggers never kick each other off the broker.
// A broker URL without a port gets the scheme's standard port.
func (c *Config) SetDefaults() {
	if c.Broker == "" {
		c.Broker = DefaultBroker
	}
	c.Broker = withDefaultPort(c.Broker)
	if c.ClientID == "" {
		c.ClientID = "sensorlog-" + uuid.NewString()[:8]
	}
	if c.KeepAliveSeconds <= 0 {
		c.KeepAliveSeconds = int(defaultKeepAlive / time.Second)
	}
	if c.ConnectTimeoutSeconds <= 0 {
		c.ConnectTimeoutSeconds = int(defaultConnectTimeout / time.Second)
	}
	if c.SubscribeTimeoutSeconds <= 0 {
		c.SubscribeTimeoutSeconds = int(defaultSubscribeTimeout / time.Second)
	}
	if c.RetryIntervalSeconds <= 0 {
		c.RetryIntervalSeconds = int(defaultRetryInterval / time.Second)
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = defaultEventBuffer
	}
}

// defaultPort returns the standard port for the TCP based schemes. Websocket
// URLs are dialed as given.
func defaultPort(scheme string) string {
	switch strings.ToLower(scheme) {
	case "tcp", "mqtt":
		return "1883"
	case "ssl", "tls", "mqtts":
		return "8883"
	}
	return ""
}

func withDefaultPort(broker string) string {
	u, err := url.Parse(broker)
	if err != nil || u.Host == "" || u.Port() != "" {
		return broker
	}
	port := defaultPort(u.Scheme)
	if port == "" {
		return broker
	}
	u.Host = net.JoinHostPort(u.Hostname(), port)
	return u.String()
}

// Validate checks the broker address and QoS.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	u, err := url.Parse(c.Broker)
	if err != nil {
		return fmt.Errorf("mqtt broker: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "tcp", "mqtt", "ssl", "tls", "mqtts", "ws", "wss":
	default:
		return fmt.Errorf("mqtt broker: unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("mqtt broker: missing host in %q", c.Broker)
	}
	// Paho dials the host as given, so a TCP broker without a port could
	// never connect.
	if u.Port() == "" && defaultPort(u.Scheme) != "" {
		return fmt.Errorf("mqtt broker: missing port in %q", c.Broker)
	}
	if c.QoS > maxQoS {
		return ErrInvalidQoS
	}
	if (c.ClientCert == "") != (c.ClientKey == "") {
		return fmt.Errorf("mqtt tls: client_cert and client_key must be set together")
	}
	return nil
}

// SecureScheme reports whether the broker URL selects TLS by itself.
func (c Config) SecureScheme() bool {
	u, err := url.Parse(c.Broker)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "ssl", "tls", "mqtts", "wss":
		return true
	}
	return false
}

// NewClientOptions builds mqtt client options from Config. Auto reconnect is
// enabled; the initial connection is retried by the transport instead of
// Paho so that failures can be reported.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetConnectRetry(false)
	opts.SetCleanSession(!cfg.PersistentSession)
	opts.SetOrderMatters(true)
	opts.SetKeepAlive(time.Duration(cfg.KeepAliveSeconds) * time.Second)
	opts.SetConnectTimeout(time.Duration(cfg.ConnectTimeoutSeconds) * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS || cfg.SecureScheme() || cfg.TLSConfig != nil {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the
// config. Without a CA bundle the system roots are used; the client
// certificate is optional.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.CABundle != "" {
		caBytes, err := os.ReadFile(c.CABundle)
		if err != nil {
			return nil, fmt.Errorf("read ca: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caBytes) {
			return nil, fmt.Errorf("read ca: no certificates in %s", c.CABundle)
		}
		cfg.RootCAs = pool
	}
	if c.ClientCert != "" || c.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load cert: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
