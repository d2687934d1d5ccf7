package mqtt

import "log"

// RawPublisher sends a pre-formatted message to one topic.
type RawPublisher interface {
	PublishRaw(topic string, qos byte, retained bool, payload []byte) error
}

// bufferedMsg stores a serialized message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that stores messages while the
// broker is unreachable. Not safe for concurrent use; the single-threaded
// control loop is the only caller.
type ringBuffer struct {
	buf      []bufferedMsg
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]bufferedMsg, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == r.capacity {
		if !r.overflow {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", r.capacity)
			r.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]bufferedMsg, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}

// DefaultBufferCapacity bounds how many messages survive a broker
// outage. Contact changes are rare; this covers hours of disconnection.
const DefaultBufferCapacity = 256

// Buffered wraps a raw publisher so broker loss never stalls or loses
// the statue's contact reporting: while disconnected, messages queue in
// a fixed ring; the first publish after reconnection drains the ring in
// order before the fresh message goes out.
type Buffered struct {
	raw    RawPublisher
	status ConnectionStatus
	ring   *ringBuffer
	closer interface{ Close() error }
}

// NewBuffered wraps raw with an offline ring of the given capacity.
// status is usually the same underlying client.
func NewBuffered(raw RawPublisher, status ConnectionStatus, capacity int) *Buffered {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	b := &Buffered{raw: raw, status: status, ring: newRingBuffer(capacity)}
	if c, ok := raw.(interface{ Close() error }); ok {
		b.closer = c
	}
	return b
}

// Pending returns how many messages are waiting for reconnection.
func (b *Buffered) Pending() int { return b.ring.len() }

func (b *Buffered) send(topic string, qos byte, retained bool, payload []byte) error {
	if b.status != nil && !b.status.IsConnected() {
		b.ring.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return nil
	}

	drained := b.ring.drainAll()
	for i, queued := range drained {
		if err := b.raw.PublishRaw(queued.topic, queued.qos, queued.retained, queued.payload); err != nil {
			// Requeue the failed element and everything behind it, in
			// order; the new message queues last.
			for _, m := range drained[i:] {
				b.ring.push(m)
			}
			b.ring.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
			return err
		}
	}

	return b.raw.PublishRaw(topic, qos, retained, payload)
}

// PublishContact sends or queues a contact change.
func (b *Buffered) PublishContact(msg ContactMessage) error {
	payload, err := FormatContact(msg)
	if err != nil {
		return err
	}
	return b.send(TopicContact, 1, false, payload)
}

// PublishSignals sends a signal report. Reports are not queued offline;
// a stale level report is worse than none.
func (b *Buffered) PublishSignals(msg SignalsMessage) error {
	if b.status != nil && !b.status.IsConnected() {
		return nil
	}
	payload, err := FormatSignals(msg)
	if err != nil {
		return err
	}
	return b.raw.PublishRaw(TopicSignals, 0, false, payload)
}

// RequestConfig sends or queues a config request.
func (b *Buffered) RequestConfig() error {
	return b.send(TopicConfigRequest, 0, false, []byte("true"))
}

// Close closes the underlying publisher if it supports closing.
func (b *Buffered) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}
