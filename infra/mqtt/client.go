package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/productionplan/core/logger"
	coremon "github.com/kilianp07/productionplan/core/monitoring"
	coremqtt "github.com/kilianp07/productionplan/core/mqtt"
	infralogger "github.com/kilianp07/productionplan/infra/logger"
)

// DefaultTopicPrefix is the first topic level of setpoint and ack topics.
const DefaultTopicPrefix = "productionplan"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled      bool            `json:"enabled"`
	Broker       string          `json:"broker"`
	ClientID     string          `json:"client_id"`
	Username     string          `json:"username"`
	Password     string          `json:"password"`
	TopicPrefix  string          `json:"topic_prefix"`
	AckTopic     string          `json:"ack_topic"`
	AckTimeoutMS int             `json:"ack_timeout_ms"`
	UseTLS       bool            `json:"use_tls"`
	ClientCert   string          `json:"client_cert"`
	ClientKey    string          `json:"client_key"`
	CABundle     string          `json:"ca_bundle"`
	AuthMethod   string          `json:"auth_method"`
	QoS          map[string]byte `json:"qos"`
	LWTTopic     string          `json:"lwt_topic"`
	LWTPayload   string          `json:"lwt_payload"`
	LWTQoS       byte            `json:"lwt_qos"`
	LWTRetain    bool            `json:"lwt_retain"`
	MaxRetries   int             `json:"max_retries"`
	BackoffMS    int             `json:"backoff_ms"`
	TLSConfig    *tls.Config     `json:"-"`
}

// SetDefaults fills the topic prefix, client id and retry policy.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	if c.ClientID == "" {
		c.ClientID = "productionplan"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the fields required when publishing is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	switch c.AuthMethod {
	case "", "username_password", "certificate", "both":
	default:
		return fmt.Errorf("mqtt: unknown auth_method %q", c.AuthMethod)
	}
	return nil
}

// SetpointTopic returns the topic a unit's setpoints are published on.
func (c Config) SetpointTopic(unit string) string {
	return fmt.Sprintf("%s/%s/setpoint", c.prefix(), unit)
}

// AckSubscription returns the topic filter used for acknowledgments.
func (c Config) AckSubscription() string {
	if c.AckTopic != "" {
		return c.AckTopic
	}
	return c.prefix() + "/+/ack"
}

func (c Config) prefix() string {
	return strings.TrimSuffix(c.TopicPrefix, "/")
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements coremqtt.SetpointPublisher using Eclipse Paho.
type PahoClient struct {
	cli pahoClient
	cfg Config

	mu       sync.Mutex
	ackChans map[string]chan struct{}
	logger   logger.Logger
	backoff  time.Duration
	sleep    func(time.Duration)
}

var _ coremqtt.SetpointPublisher = (*PahoClient)(nil)

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the ack topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := infralogger.New("mqtt_client")
	pc := &PahoClient{
		cfg:      cfg,
		ackChans: make(map[string]chan struct{}),
		logger:   log,
		backoff:  time.Duration(cfg.BackoffMS) * time.Millisecond,
		sleep:    time.Sleep,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		topic := cfg.AckSubscription()
		if token := c.Subscribe(topic, pc.qos("ack"), pc.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe %s: %v", topic, token.Error())
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
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	pc.cli = c
	return pc, nil
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
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qos(kind string) byte {
	if q, ok := p.cfg.QoS[kind]; ok {
		return q
	}
	return 0
}

func (p *PahoClient) onAck(_ paho.Client, msg paho.Message) {
	var m struct {
		CommandID string `json:"command_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode ack: %v", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.ackChans[m.CommandID]; ok {
		select {
		case ch <- struct{}{}:
		default:
		}
		p.logger.Debugf("received ack %s", m.CommandID)
	}
}

type setpointMessage struct {
	CommandID string  `json:"command_id"`
	PlanID    string  `json:"plan_id"`
	Unit      string  `json:"unit"`
	PowerMW   float64 `json:"power_mw"`
	Timestamp int64   `json:"timestamp"`
}

// PublishSetpoint sends the setpoint to the unit topic, retrying with
// exponential backoff, and returns the command identifier used for
// acknowledgment tracking.
func (p *PahoClient) PublishSetpoint(ctx context.Context, sp coremqtt.Setpoint) (string, error) {
	cmdID := uuid.NewString()
	at := sp.Time
	if at.IsZero() {
		at = time.Now()
	}
	payload, err := json.Marshal(setpointMessage{
		CommandID: cmdID,
		PlanID:    sp.PlanID,
		Unit:      sp.Unit,
		PowerMW:   sp.PowerMW,
		Timestamp: at.UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	// registered before publishing so a fast ack is not lost
	if p.cfg.AckTimeoutMS > 0 {
		p.mu.Lock()
		p.ackChans[cmdID] = make(chan struct{}, 1)
		p.mu.Unlock()
	}

	topic := p.cfg.SetpointTopic(sp.Unit)
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			publishErr = err
			break
		}
		token := p.cli.Publish(topic, p.qos("setpoint"), false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("sent setpoint %s to %s", cmdID, topic)
			return cmdID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.cfg.MaxRetries {
			p.sleep(p.backoff * time.Duration(1<<attempt))
		}
	}

	p.mu.Lock()
	delete(p.ackChans, cmdID)
	p.mu.Unlock()
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "unit": sp.Unit})
	return "", fmt.Errorf("publish %s: %w", topic, publishErr)
}

// AckTimeout is the configured acknowledgment timeout, zero when acks are
// not tracked.
func (p *PahoClient) AckTimeout() time.Duration {
	return time.Duration(p.cfg.AckTimeoutMS) * time.Millisecond
}

// WaitForAck blocks until an ack for the given command ID is received or timeout.
func (p *PahoClient) WaitForAck(commandID string, timeout time.Duration) (bool, error) {
	p.mu.Lock()
	ch := p.ackChans[commandID]
	p.mu.Unlock()
	if ch == nil {
		return false, coremqtt.ErrUnknownCommand
	}
	defer func() {
		p.mu.Lock()
		delete(p.ackChans, commandID)
		p.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true, nil
	case <-timer.C:
		return false, fmt.Errorf("command %s: %w", commandID, coremqtt.ErrAckTimeout)
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
