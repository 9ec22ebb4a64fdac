package mqttbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mer "meross_emulator"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const plugUUID = "19010854716361251804a4e01401c6a4"

type fakeDispatcher struct {
	gotUUID string
	gotReq  mer.Message
	reply   mer.Message
	err     error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, uuid string, req mer.Message) (mer.Message, error) {
	f.gotUUID = uuid
	f.gotReq = req
	return f.reply, f.err
}

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (p *fakePublisher) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	p.sent = append(p.sent, published{topic: topic, payload: payload.([]byte)})
	return doneToken{err: p.err}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newTestBridge(d Dispatcher) (*Bridge, *fakePublisher) {
	b := New(Config{Broker: "tcp://127.0.0.1:1883", ClientID: "test"}, d, nil)
	pub := &fakePublisher{}
	b.pub = pub
	return b, pub
}

func request(t *testing.T, from string) []byte {
	t.Helper()
	req, err := mer.BuildMessage(mer.NSControlElectricity, mer.MethodGet, map[string]any{}, "k", from, "m1", time.Unix(1740830400, 0))
	require.NoError(t, err)
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return body
}

func TestBridge_RepliesToRequester(t *testing.T) {
	reply, err := mer.BuildMessage(mer.NSControlElectricity, mer.MethodGetAck, map[string]int{"power": 1}, "k", mer.ResponseTopic(plugUUID), "m1", time.Unix(1740830400, 0))
	require.NoError(t, err)
	d := &fakeDispatcher{reply: reply}
	b, pub := newTestBridge(d)

	b.handleMessage(nil, fakeMessage{topic: mer.RequestTopic(plugUUID), payload: request(t, "/app/42-abc/subscribe")})

	assert.Equal(t, plugUUID, d.gotUUID)
	assert.Equal(t, "m1", d.gotReq.Header.MessageID)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "/app/42-abc/subscribe", pub.sent[0].topic)

	var got mer.Message
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &got))
	assert.Equal(t, mer.MethodGetAck, got.Header.Method)
}

func TestBridge_FallsBackToPublishTopic(t *testing.T) {
	b, pub := newTestBridge(&fakeDispatcher{})

	b.handleMessage(nil, fakeMessage{topic: mer.RequestTopic(plugUUID), payload: request(t, "")})

	require.Len(t, pub.sent, 1)
	assert.Equal(t, mer.ResponseTopic(plugUUID), pub.sent[0].topic)
}

func TestBridge_DropsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		topic   string
		payload []byte
		err     error
	}{
		{name: "foreign topic", topic: "/other/thing", payload: []byte(`{}`)},
		{name: "not json", topic: mer.RequestTopic(plugUUID), payload: []byte(`{"header":`)},
		{name: "no namespace", topic: mer.RequestTopic(plugUUID), payload: []byte(`{"header":{"method":"GET"},"payload":{}}`)},
		{name: "unknown device", topic: mer.RequestTopic(plugUUID), payload: []byte(`{"header":{"namespace":"Appliance.System.All","method":"GET"}}`), err: errors.New("device not found")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, pub := newTestBridge(&fakeDispatcher{err: c.err})
			b.handleMessage(nil, fakeMessage{topic: c.topic, payload: c.payload})
			assert.Empty(t, pub.sent)
		})
	}
}

func TestBridge_PublishErrorIsLogged(t *testing.T) {
	b, pub := newTestBridge(&fakeDispatcher{})
	pub.err = errors.New("not connected")

	b.handleMessage(nil, fakeMessage{topic: mer.RequestTopic(plugUUID), payload: request(t, "")})
	assert.Len(t, pub.sent, 1)
}

func TestReplyTopic(t *testing.T) {
	assert.Equal(t, "/app/1/subscribe", replyTopic(plugUUID, "/app/1/subscribe"))
	assert.Equal(t, mer.ResponseTopic(plugUUID), replyTopic(plugUUID, ""))
	assert.Equal(t, mer.ResponseTopic(plugUUID), replyTopic(plugUUID, "garbage"))
}
