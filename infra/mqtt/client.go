package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/stagewatch/stagewatch/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string          `json:"broker"`
	ClientID   string          `json:"client_id"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	BaseTopic  string          `json:"base_topic"`
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

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// PahoPublisher pushes the resolved live state to display clients over MQTT.
// Slot names are published retained so a display that connects mid-service
// immediately renders the current assignment.
type PahoPublisher struct {
	cli       pahoClient
	baseTopic string
	qos       map[string]byte

	mu         sync.Mutex
	published  map[int]bool
	lastPlanID string
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoPublisher connects to the MQTT broker and announces availability on
// the status topic.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logger.New("mqtt_publisher")
	base := cfg.BaseTopic
	if base == "" {
		base = "stagewatch"
	}
	p := &PahoPublisher{
		baseTopic:  base,
		published:  make(map[int]bool),
		logger:     logger,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		logger.Infof("MQTT connected")
		if token := c.Publish(base+"/status", 1, true, "online"); token.Wait() && token.Error() != nil {
			logger.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
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

func (p *PahoPublisher) publish(topic string, qosKey string, retained bool, payload any) error {
	qos := byte(0)
	if q, ok := p.qos[qosKey]; ok {
		qos = q
	}
	maxRetries := p.maxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := p.backoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	var publishErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		time.Sleep(backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// PublishSlots publishes the given slot names retained, one topic per slot.
// While the same plan stays live, a slot absent from the mapping keeps its
// retained name on the broker; topics are cleared only when the resolved
// plan changes or ends.
func (p *PahoPublisher) PublishSlots(planID string, slots map[int]string) error {
	p.mu.Lock()
	prev := p.published
	planChanged := planID != p.lastPlanID
	p.mu.Unlock()

	next := make(map[int]bool, len(slots))
	var firstErr error
	for slot, name := range slots {
		topic := fmt.Sprintf("%s/slots/%d", p.baseTopic, slot)
		if err := p.publish(topic, "slots", true, name); err != nil && firstErr == nil {
			firstErr = err
		}
		next[slot] = true
	}
	for slot := range prev {
		if next[slot] {
			continue
		}
		if !planChanged {
			// same plan: leave the retained name alone, keep tracking the
			// topic so the next plan change clears it
			next[slot] = true
			continue
		}
		// empty retained payload drops the retained message on the broker
		topic := fmt.Sprintf("%s/slots/%d", p.baseTopic, slot)
		if err := p.publish(topic, "slots", true, ""); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	p.mu.Lock()
	p.published = next
	p.lastPlanID = planID
	p.mu.Unlock()
	if firstErr == nil {
		p.logger.Infof("published %d slot names", len(slots))
	}
	return firstErr
}

// PublishLive publishes the resolved plan summary retained on the live topic.
func (p *PahoPublisher) PublishLive(state LivePayload) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return p.publish(p.baseTopic+"/live", "live", true, payload)
}

// Disconnect clears the status topic and closes the MQTT connection.
func (p *PahoPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		if token := p.cli.Publish(p.baseTopic+"/status", 1, true, "offline"); token.Wait() && token.Error() != nil {
			p.logger.Errorf("status publish error: %v", token.Error())
		}
		p.cli.Disconnect(250)
	}
}
