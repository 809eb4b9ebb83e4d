// Package mqtt publishes engine events to an MQTT broker so depot
// dashboards and signage can react without polling the API.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremetrics "github.com/railyard-ops/railyard/core/metrics"
	"github.com/railyard-ops/railyard/infra/logger"
	"github.com/railyard-ops/railyard/internal/eventbus"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "railyard-" + uuid.NewString()[:8]
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "railyard"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("broker is required when mqtt is enabled")
	}
	return nil
}

// Notifier forwards bus events to MQTT topics. Event types map to
// subtopics under the configured prefix: passes, commits, movements.
type Notifier struct {
	cli    paho.Client
	prefix string
	qos    byte
	log    logger.Logger
}

// NewNotifier connects to the broker described by the config.
func NewNotifier(cfg Config) (*Notifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	cli := paho.NewClient(opts)
	if tok := cli.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", tok.Error())
	}
	return &Notifier{
		cli:    cli,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		log:    logger.New("mqtt-notifier"),
	}, nil
}

// Run consumes the subscription channel until the context is cancelled
// or the channel closes.
func (n *Notifier) Run(ctx context.Context, events <-chan eventbus.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			n.publish(ev)
		}
	}
}

func (n *Notifier) publish(ev any) {
	var topic string
	switch ev.(type) {
	case coremetrics.PassEvent:
		topic = n.prefix + "/passes"
	case coremetrics.CommitEvent:
		topic = n.prefix + "/commits"
	case coremetrics.MovementsEvent:
		topic = n.prefix + "/movements"
	default:
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		n.log.Errorf("marshal %T: %v", ev, err)
		return
	}
	tok := n.cli.Publish(topic, n.qos, false, payload)
	if tok.Wait() && tok.Error() != nil {
		n.log.Errorf("publish %s: %v", topic, tok.Error())
	}
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	n.cli.Disconnect(250)
}
