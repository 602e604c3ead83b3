package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/muhirwa45/E-moto/core/delivery"
	"github.com/muhirwa45/E-moto/core/logger"
	coremqtt "github.com/muhirwa45/E-moto/core/mqtt"
	infralogger "github.com/muhirwa45/E-moto/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string          `json:"broker"`
	ClientID   string          `json:"client_id"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	AckTopic   string          `json:"ack_topic"`
	UseTLS     bool            `json:"use_tls"`
	ClientCert string          `json:"client_cert"`
	ClientKey  string          `json:"client_key"`
	CABundle   string          `json:"ca_bundle"`
	AuthMethod string          `json:"auth_method"`
	QoS        map[string]byte `json:"qos"`
	LWTTopic   string          `json:"lwt_topic"`
	LWTPayload string          `json:"lwt_payload"`
	LWTQoS     byte            `json:"lwt_qos"`
	LWTRetain  bool            `json:"lwt_retain"`
	MaxRetries int             `json:"max_retries"`
	BackoffMS  int             `json:"backoff_ms"`
	TLSConfig  *tls.Config     `json:"-"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "emoto"
	}
	if c.AckTopic == "" {
		c.AckTopic = DefaultAckTopic
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	switch c.AuthMethod {
	case "", "username_password", "certificate", "both":
	default:
		return fmt.Errorf("mqtt: unknown auth_method %s", c.AuthMethod)
	}
	for k, q := range c.QoS {
		if q > 2 {
			return fmt.Errorf("mqtt: invalid qos %d for %s", q, k)
		}
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements coremqtt.Client using Eclipse Paho. It also exposes
// plain publish and subscribe for the tracking publisher and sensor feed.
type PahoClient struct {
	cli      pahoClient
	ackTopic string
	qos      map[string]byte

	mu         sync.Mutex
	ackChans   map[string]chan bool
	subs       map[string]paho.MessageHandler
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the ACK topic.
// Subscriptions made later are restored on every reconnect.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := infralogger.New("mqtt_client")
	pc := &PahoClient{
		ackTopic:   cfg.AckTopic,
		ackChans:   make(map[string]chan bool),
		subs:       make(map[string]paho.MessageHandler),
		logger:     log,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(pc.ackTopic, pc.qosFor("ack"), pc.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
		pc.mu.Lock()
		subs := make(map[string]paho.MessageHandler, len(pc.subs))
		for t, h := range pc.subs {
			subs[t] = h
		}
		pc.mu.Unlock()
		for topic, h := range subs {
			if token := c.Subscribe(topic, pc.qosFor("sensor"), h); token.Wait() && token.Error() != nil {
				log.Errorf("resubscribe %s: %v", topic, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	pc.cli = c
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
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

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// ack is the station's answer to an order. A missing accepted field counts
// as acceptance.
type ack struct {
	CommandID string `json:"command_id"`
	Accepted  *bool  `json:"accepted"`
}

func (p *PahoClient) onAck(_ paho.Client, msg paho.Message) {
	var m ack
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode ack: %v", err)
		return
	}
	accepted := m.Accepted == nil || *m.Accepted
	p.mu.Lock()
	ch, ok := p.ackChans[m.CommandID]
	if ok {
		select {
		case ch <- accepted:
		default:
		}
		p.logger.Infof("received ack %s (accepted=%t)", m.CommandID, accepted)
	}
	p.mu.Unlock()
}

// order is the wire form of a dispatch order.
type order struct {
	CommandID   string  `json:"command_id"`
	DeliveryID  string  `json:"delivery_id"`
	StationID   int     `json:"station_id"`
	BatteryType string  `json:"battery_type"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Timestamp   int64   `json:"timestamp"`
}

// SendOrder publishes a dispatch order to the station topic and returns the
// command identifier used for acknowledgment tracking.
func (p *PahoClient) SendOrder(ctx context.Context, o delivery.Order) (string, error) {
	cmdID := uuid.NewString()
	ts := o.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	payload, err := json.Marshal(order{
		CommandID:   cmdID,
		DeliveryID:  o.DeliveryID,
		StationID:   o.StationID,
		BatteryType: string(o.BatteryType),
		Lat:         o.UserLocation.Lat,
		Lng:         o.UserLocation.Lng,
		Timestamp:   ts.UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	// register before publishing so a fast ack is not lost
	p.mu.Lock()
	p.ackChans[cmdID] = make(chan bool, 1)
	p.mu.Unlock()

	topic := DispatchTopic(o.StationID)
	if err := p.publish(ctx, topic, p.qosFor("command"), payload); err != nil {
		p.mu.Lock()
		delete(p.ackChans, cmdID)
		p.mu.Unlock()
		return "", err
	}
	p.logger.Infof("sent order %s to %s", cmdID, topic)
	return cmdID, nil
}

// Publish sends payload to topic with the bounded retry policy.
func (p *PahoClient) Publish(topic string, payload []byte) error {
	return p.publish(context.Background(), topic, p.qosFor("tracking"), payload)
}

func (p *PahoClient) publish(ctx context.Context, topic string, qos byte, payload []byte) error {
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			select {
			case <-time.After(p.backoff * time.Duration(1<<attempt)):
			case <-ctx.Done():
				return fmt.Errorf("publish to %s: %w", topic, ctx.Err())
			}
		}
	}
	return publishErr
}

// Subscribe registers handler for topic. It is kept across reconnects.
func (p *PahoClient) Subscribe(topic string, handler func(payload []byte)) error {
	h := func(_ paho.Client, msg paho.Message) { handler(msg.Payload()) }
	p.mu.Lock()
	p.subs[topic] = h
	p.mu.Unlock()
	token := p.cli.Subscribe(topic, p.qosFor("sensor"), h)
	token.Wait()
	return token.Error()
}

// WaitForAck blocks until the station answers commandID, the timeout
// expires or ctx is done.
func (p *PahoClient) WaitForAck(ctx context.Context, commandID string, timeout time.Duration) (bool, error) {
	p.mu.Lock()
	ch := p.ackChans[commandID]
	p.mu.Unlock()
	if ch == nil {
		return false, fmt.Errorf("unknown command %s", commandID)
	}
	defer func() {
		p.mu.Lock()
		delete(p.ackChans, commandID)
		p.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case accepted := <-ch:
		if !accepted {
			return false, coremqtt.ErrOrderRejected
		}
		return true, nil
	case <-timer.C:
		return false, fmt.Errorf("command %s: %w", commandID, coremqtt.ErrAckTimeout)
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

var _ coremqtt.Client = (*PahoClient)(nil)
