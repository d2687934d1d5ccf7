package main

import (
	"testing"
	"time"

	"github.com/firstcontact/missing-link/internal/config"
	"github.com/firstcontact/missing-link/internal/mqtt"
	"github.com/firstcontact/missing-link/internal/relay"
	"github.com/firstcontact/missing-link/internal/status"
	"github.com/firstcontact/missing-link/internal/topology"
	"github.com/firstcontact/missing-link/internal/web"
)

type controllerFixture struct {
	graph     *topology.Graph
	tracker   *status.Tracker
	stream    *web.Stream
	sink      *relay.FakeSink
	publisher *mqtt.FakePublisher
}

func newControllerFixture() *controllerFixture {
	names := config.DefaultTable().Names()
	return &controllerFixture{
		graph:     topology.NewGraph(names),
		tracker:   status.NewTracker(time.Now(), status.Config{Statues: names}),
		stream:    web.NewStream(),
		sink:      &relay.FakeSink{},
		publisher: mqtt.NewFakePublisher(),
	}
}

func (f *controllerFixture) handle(detector string, emitters ...string) {
	handleContact(mqtt.ContactMessage{Detector: detector, Emitters: emitters},
		f.graph, f.tracker, f.stream, f.sink, f.publisher)
}

func TestHandleContactPublishesClimaxOnEdgeChange(t *testing.T) {
	f := newControllerFixture()

	f.handle("eros", "elektra")

	if len(f.publisher.Climaxes) != 1 {
		t.Fatalf("climaxes = %d, want 1", len(f.publisher.Climaxes))
	}
	msg := f.publisher.Climaxes[0]
	if msg.State != "inactive" {
		t.Errorf("state = %q, want inactive", msg.State)
	}
	if len(msg.ConnectedPairs) != 1 || len(msg.MissingPairs) != 4 {
		t.Errorf("pairs = %d connected / %d missing, want 1/4",
			len(msg.ConnectedPairs), len(msg.MissingPairs))
	}
}

func TestHandleContactIgnoresDuplicates(t *testing.T) {
	f := newControllerFixture()

	f.handle("eros", "elektra")
	f.handle("eros", "elektra")

	// The redelivered report changes nothing, so nothing is published,
	// but the tracker still counts the message.
	if len(f.publisher.Climaxes) != 1 {
		t.Errorf("climaxes = %d, want 1", len(f.publisher.Climaxes))
	}
	if got := f.tracker.Snapshot().ContactCount; got != 2 {
		t.Errorf("contact count = %d, want 2", got)
	}
}

func TestHandleContactDrivesRelaysOnClimaxEdges(t *testing.T) {
	f := newControllerFixture()

	f.handle("eros", "elektra")
	f.handle("elektra", "ariel")
	f.handle("ariel", "sophia")
	f.handle("sophia", "ultimo")
	if len(f.sink.States) != 0 {
		t.Fatalf("relays switched before ring closure: %v", f.sink.States)
	}

	f.handle("ultimo", "eros")
	if len(f.sink.States) != 1 || !f.sink.States[0] {
		t.Fatalf("relay states = %v, want [true]", f.sink.States)
	}

	last := f.publisher.Climaxes[len(f.publisher.Climaxes)-1]
	if last.State != "active" {
		t.Errorf("state = %q, want active", last.State)
	}
	if len(last.MissingPairs) != 0 {
		t.Errorf("missing pairs = %v, want none", last.MissingPairs)
	}
	if got := f.tracker.Snapshot().ClimaxCount; got != 1 {
		t.Errorf("climax count = %d, want 1", got)
	}

	// Dropping one edge releases the relays exactly once.
	f.handle("ultimo")
	if len(f.sink.States) != 2 || f.sink.States[1] {
		t.Fatalf("relay states = %v, want [true false]", f.sink.States)
	}
	last = f.publisher.Climaxes[len(f.publisher.Climaxes)-1]
	if last.State != "inactive" {
		t.Errorf("state = %q, want inactive after drop", last.State)
	}
}

func TestHandleContactUnknownDetectorPublishesNothing(t *testing.T) {
	f := newControllerFixture()

	f.handle("intruder", "eros")

	if len(f.publisher.Climaxes) != 0 {
		t.Errorf("climaxes = %d, want 0", len(f.publisher.Climaxes))
	}
	if len(f.sink.States) != 0 {
		t.Errorf("relay states = %v, want none", f.sink.States)
	}
}
