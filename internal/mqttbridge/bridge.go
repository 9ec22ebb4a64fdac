package mqttbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mer "meross_emulator"
	"meross_emulator/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout  = 10 * time.Second
	publishTimeout  = 5 * time.Second
	disconnectQuiet = 250 // ms
)

// Dispatcher answers a protocol request addressed to one device.
type Dispatcher interface {
	Dispatch(ctx context.Context, uuid string, req mer.Message) (mer.Message, error)
}

// publisher is the part of mqtt.Client the bridge writes through.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Config describes the broker connection.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// Bridge exposes the emulated devices on an MQTT broker the way real plugs
// talk to the meross cloud.
type Bridge struct {
	client  mqtt.Client
	pub     publisher
	devices Dispatcher
	qos     byte
	log     *logger.Logger
	ctx     context.Context
}

// New builds a bridge; nothing is connected until Start.
func New(cfg Config, devices Dispatcher, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	b := &Bridge{devices: devices, qos: cfg.QoS, log: log, ctx: context.Background()}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(b.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warnw("mqtt_connection_lost", "err", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	b.client = mqtt.NewClient(opts)
	b.pub = b.client
	return b
}

// Start connects and subscribes. The connection is closed when ctx is done.
func (b *Bridge) Start(ctx context.Context) error {
	b.ctx = ctx
	token := b.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.New("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	go func() {
		<-ctx.Done()
		b.client.Disconnect(disconnectQuiet)
		b.log.Infow("mqtt_disconnected")
	}()
	return nil
}

// onConnect (re)subscribes after every successful connect.
func (b *Bridge) onConnect(c mqtt.Client) {
	token := c.Subscribe(mer.TopicRequestWildcard, b.qos, b.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		b.log.Errorw("mqtt_subscribe_failed", "topic", mer.TopicRequestWildcard, "err", err)
		return
	}
	b.log.Infow("mqtt_subscribed", "topic", mer.TopicRequestWildcard)
}

func (b *Bridge) handleMessage(_ mqtt.Client, m mqtt.Message) {
	topic, body, ok := b.process(b.ctx, m.Topic(), m.Payload())
	if !ok {
		return
	}
	token := b.pub.Publish(topic, b.qos, false, body)
	if !token.WaitTimeout(publishTimeout) {
		b.log.Warnw("mqtt_publish_timeout", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		b.log.Errorw("mqtt_publish_failed", "topic", topic, "err", err)
	}
}

// process turns one request into the reply topic and body. Malformed input is
// logged and dropped.
func (b *Bridge) process(ctx context.Context, topic string, payload []byte) (string, []byte, bool) {
	uuid, ok := mer.DeviceIDFromTopic(topic)
	if !ok {
		b.log.Infow("mqtt_unexpected_topic", "topic", topic)
		return "", nil, false
	}

	var req mer.Message
	if err := json.Unmarshal(payload, &req); err != nil {
		b.log.Infow("mqtt_malformed_message", "device", uuid, "err", err)
		return "", nil, false
	}
	if req.Header.Namespace == "" || req.Header.Method == "" {
		b.log.Infow("mqtt_malformed_message", "device", uuid, "err", "missing namespace or method")
		return "", nil, false
	}

	reply, err := b.devices.Dispatch(ctx, uuid, req)
	if err != nil {
		b.log.Infow("mqtt_dispatch_failed", "device", uuid, "namespace", req.Header.Namespace, "err", err)
		return "", nil, false
	}
	body, err := json.Marshal(reply)
	if err != nil {
		b.log.Errorw("mqtt_marshal_failed", "device", uuid, "err", err)
		return "", nil, false
	}
	return replyTopic(uuid, req.Header.From), body, true
}

// replyTopic is the requester's topic, or the device publish topic when the
// request did not name one.
func replyTopic(uuid, from string) string {
	if strings.HasPrefix(from, "/") {
		return from
	}
	return mer.ResponseTopic(uuid)
}
