package events

import (
	"context"
	"errors"
	"testing"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	pulsar.Message
	key     string
	payload []byte
}

func (m *fakeMessage) Key() string     { return m.key }
func (m *fakeMessage) Payload() []byte { return m.payload }

// fakeReceiver hands out queued messages and then blocks until the context
// is cancelled.
type fakeReceiver struct {
	messages []pulsar.Message
	acked    []pulsar.Message
	nacked   []pulsar.Message
	cancel   context.CancelFunc
	closed   bool
}

func (f *fakeReceiver) Receive(ctx context.Context) (pulsar.Message, error) {
	if len(f.messages) == 0 {
		f.cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeReceiver) Ack(msg pulsar.Message) error {
	f.acked = append(f.acked, msg)
	return nil
}

func (f *fakeReceiver) Nack(msg pulsar.Message) {
	f.nacked = append(f.nacked, msg)
}

func (f *fakeReceiver) Close() {
	f.closed = true
}

func TestEventConsumer_Run(t *testing.T) {
	event := testEvent()
	payload, err := Encode(event)
	require.NoError(t, err)

	good := &fakeMessage{key: "abc", payload: payload}
	malformed := &fakeMessage{key: "abc", payload: []byte(`{}`)}
	rejected := &fakeMessage{key: "def", payload: payload}

	ctx, cancel := context.WithCancel(context.Background())
	receiver := &fakeReceiver{messages: []pulsar.Message{good, malformed, rejected}, cancel: cancel}
	consumer := &EventConsumer{consumer: receiver}

	store := new(mockStore)
	store.On("RecordEvent", mock.Anything, event).Return(nil).Once()
	store.On("RecordEvent", mock.Anything, event).Return(errors.New("db down")).Once()

	require.NoError(t, consumer.Run(ctx, store))

	assert.Equal(t, []pulsar.Message{good, malformed}, receiver.acked)
	assert.Equal(t, []pulsar.Message{rejected}, receiver.nacked)
	store.AssertExpectations(t)

	consumer.Close()
	assert.True(t, receiver.closed)
}
