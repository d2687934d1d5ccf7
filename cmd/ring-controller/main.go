// Command ring-controller is the central coordinator: it subscribes to
// every statue's contact reports, tracks ring-neighbor links, switches
// the climax relays on full ring closure, and serves a status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/firstcontact/missing-link/internal/config"
	"github.com/firstcontact/missing-link/internal/mqtt"
	"github.com/firstcontact/missing-link/internal/relay"
	"github.com/firstcontact/missing-link/internal/status"
	"github.com/firstcontact/missing-link/internal/topology"
	"github.com/firstcontact/missing-link/internal/web"
)

func main() {
	broker := flag.String("broker", "tcp://127.0.0.1:1883", "MQTT broker address")
	configPath := flag.String("config", "", "Statue table JSON (empty for built-in table)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	relayA := flag.Int("relay-a", relay.DefaultPinA, "BCM pin for climax relay A")
	relayB := flag.Int("relay-b", relay.DefaultPinB, "BCM pin for climax relay B")
	noRelay := flag.Bool("no-relay", false, "Disable the relay outputs")

	flag.Parse()

	if err := run(*broker, *configPath, *httpAddr, *relayA, *relayB, *noRelay); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(broker, configPath, httpAddr string, relayA, relayB int, noRelay bool) error {
	table := config.DefaultTable()
	if configPath != "" {
		var err error
		if table, err = config.Load(configPath); err != nil {
			return err
		}
	}

	graph := topology.NewGraph(table.Names())
	tracker := status.NewTracker(time.Now(), status.Config{
		Broker:   broker,
		HTTPAddr: httpAddr,
		Statues:  table.Names(),
	})

	var sink relay.Sink = relay.Null{}
	if !noRelay {
		real, err := relay.NewRealSink(relayA, relayB)
		if err != nil {
			// Climax actuation is optional; evaluation keeps working.
			log.Printf("relay init failed, running without relays: %v", err)
		} else {
			sink = real
		}
	}
	defer sink.Close()

	client, err := mqtt.NewClient(broker, "ring-controller")
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	stream := web.NewStream()
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, stream)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	// Serve the statue table to nodes that ask for it.
	tableJSON, err := table.Encode()
	if err != nil {
		return fmt.Errorf("encode statue table: %w", err)
	}
	if err := client.SubscribeConfigRequests(func() {
		if err := client.PublishConfigResponse(tableJSON); err != nil {
			log.Printf("publish config response: %v", err)
		}
	}); err != nil {
		log.Printf("subscribe config requests: %v", err)
	}

	// Contact handling runs on paho's callback goroutines; the graph's
	// lock is the single-writer section for all derived state.
	if err := client.SubscribeContact(func(msg mqtt.ContactMessage) {
		handleContact(msg, graph, tracker, stream, sink, client)
	}); err != nil {
		return fmt.Errorf("subscribe contact: %w", err)
	}

	log.Printf("started: broker=%s ring=%v", broker, table.Names())

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case s := <-sigCh:
			log.Printf("received %v, shutting down", s)
			if err := sink.SetClimax(false); err != nil {
				log.Printf("release relays: %v", err)
			}
			return nil
		case <-ticker.C:
			tracker.SetMQTTConnected(client.IsConnected())
		}
	}
}

// handleContact applies one statue report and fans out the consequences:
// relays and climax publication on climax edges, status and websocket
// updates on any edge change. Duplicate reports change nothing and
// publish nothing.
func handleContact(msg mqtt.ContactMessage, graph *topology.Graph, tracker *status.Tracker,
	stream *web.Stream, sink relay.Sink, publisher mqtt.ClimaxPublisher) {

	tr := graph.Update(msg.Detector, msg.Emitters)
	tracker.UpdateRing(tr.Snapshot, tr.ClimaxStarted)

	switch {
	case tr.ClimaxStarted:
		log.Printf("climax started: all %d edges active", len(tr.Snapshot.ActiveEdges))
		if err := sink.SetClimax(true); err != nil {
			log.Printf("set relays: %v", err)
		}
	case tr.ClimaxStopped:
		log.Printf("climax stopped: %d edges remain", len(tr.Snapshot.ActiveEdges))
		if err := sink.SetClimax(false); err != nil {
			log.Printf("set relays: %v", err)
		}
	}

	if !tr.EdgesChanged && !tr.ClimaxStarted && !tr.ClimaxStopped {
		return
	}

	state := "inactive"
	if tr.Snapshot.ClimaxActive {
		state = "active"
	}
	if err := publisher.PublishClimax(mqtt.ClimaxMessage{
		State:          state,
		ConnectedPairs: topology.Pairs(tr.Snapshot.ActiveEdges),
		MissingPairs:   topology.Pairs(tr.Snapshot.MissingEdges),
	}); err != nil {
		log.Printf("publish climax: %v", err)
	}

	stream.Broadcast(tracker.Snapshot())
}
