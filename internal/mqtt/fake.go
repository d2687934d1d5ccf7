package mqtt

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Contacts contains all contact messages that were published.
	Contacts []ContactMessage

	// Signals contains all signal reports that were published.
	Signals []SignalsMessage

	// Climaxes contains all climax messages that were published.
	Climaxes []ClimaxMessage

	// ConfigRequests counts RequestConfig calls.
	ConfigRequests int

	// PublishError, if set, is returned by every publish method.
	PublishError error

	// Connected controls IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a connected FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

// PublishContact records the contact message.
func (f *FakePublisher) PublishContact(msg ContactMessage) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Contacts = append(f.Contacts, msg)
	return nil
}

// PublishSignals records the signal report.
func (f *FakePublisher) PublishSignals(msg SignalsMessage) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Signals = append(f.Signals, msg)
	return nil
}

// PublishClimax records the climax message.
func (f *FakePublisher) PublishClimax(msg ClimaxMessage) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Climaxes = append(f.Climaxes, msg)
	return nil
}

// RequestConfig records the request.
func (f *FakePublisher) RequestConfig() error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.ConfigRequests++
	return nil
}

// IsConnected reports the scripted connection state.
func (f *FakePublisher) IsConnected() bool { return f.Connected }

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// RawRecord is one message captured by FakeRaw.
type RawRecord struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// FakeRaw records raw publishes, for exercising the offline buffer.
type FakeRaw struct {
	// Records contains every raw publish, in order.
	Records []RawRecord

	// Err, if set, is returned by PublishRaw.
	Err error
}

// PublishRaw records the message.
func (f *FakeRaw) PublishRaw(topic string, qos byte, retained bool, payload []byte) error {
	if f.Err != nil {
		return f.Err
	}
	f.Records = append(f.Records, RawRecord{Topic: topic, Payload: payload, QoS: qos, Retained: retained})
	return nil
}

// Topics returns the topics of all records, in order.
func (f *FakeRaw) Topics() []string {
	out := make([]string, len(f.Records))
	for i, r := range f.Records {
		out[i] = r.Topic
	}
	return out
}

// ConnFlag is a settable ConnectionStatus for tests.
type ConnFlag struct{ Connected bool }

// IsConnected reports the flag value.
func (f *ConnFlag) IsConnected() bool { return f.Connected }
