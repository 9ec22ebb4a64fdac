package meross_emulator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header is the routing/auth part of every protocol message.
type Header struct {
	MessageID      string `json:"messageId"`
	Namespace      string `json:"namespace"`
	Method         string `json:"method"`
	PayloadVersion int    `json:"payloadVersion"`
	From           string `json:"from"`
	Timestamp      int64  `json:"timestamp"`
	TimestampMs    int64  `json:"timestampMs"`
	Sign           string `json:"sign"`
}

// Message is the envelope exchanged over both HTTP (/config) and MQTT.
type Message struct {
	Header  Header          `json:"header"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorPayload is the payload of an ERROR reply.
type ErrorPayload struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code   int    `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// RequestTopic returns the topic a device listens on.
func RequestTopic(deviceID string) string {
	return fmt.Sprintf(topicRequestFmt, deviceID)
}

// ResponseTopic returns the topic a device publishes its replies on.
func ResponseTopic(deviceID string) string {
	return fmt.Sprintf(topicResponseFmt, deviceID)
}

// DeviceIDFromTopic extracts the uuid segment of "/appliance/<uuid>/...".
func DeviceIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(topic, "/"), "/")
	if len(parts) != 3 || parts[0] != "appliance" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// NewMessageID returns a 32-char hex id.
func NewMessageID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// BuildMessage marshals payload and wraps it in a signed envelope.
// An empty messageID gets a freshly generated one.
func BuildMessage(namespace, method string, payload any, key, from, messageID string, now time.Time) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", namespace, err)
	}
	if messageID == "" {
		messageID = NewMessageID()
	}
	ts := now.Unix()
	return Message{
		Header: Header{
			MessageID:      messageID,
			Namespace:      namespace,
			Method:         method,
			PayloadVersion: 1,
			From:           from,
			Timestamp:      ts,
			TimestampMs:    int64(now.Nanosecond() / int(time.Millisecond)),
			Sign:           Sign(messageID, key, ts),
		},
		Payload: raw,
	}, nil
}

// Verify reports whether the header signature matches key.
func (h Header) Verify(key string) bool {
	return h.Sign == Sign(h.MessageID, key, h.Timestamp)
}
