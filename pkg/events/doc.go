/*
Package events provides an in-memory event broker for rotator-helper's
rotation-run notifications.

The events package implements a lightweight event bus for broadcasting
rotation-lifecycle events to interested subscribers. It supports
fire-and-forget pub/sub with asynchronous delivery, letting consumers of
rotation progress stay decoupled from the orchestrator that drives a
rotation run.

# Architecture

The event system provides pub/sub messaging over buffered channels:

	┌──────────────────── EVENT BROKER ────────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │              Event Broker                   │          │
	│  │  - In-memory message bus                    │          │
	│  │  - Topic-agnostic (all events broadcast)    │          │
	│  │  - Buffered publish                         │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Event Distribution                 │          │
	│  │                                              │          │
	│  │  Publisher → Event Channel (buffer: 100)    │          │
	│  │       ↓                                      │          │
	│  │  Broadcast Loop                              │          │
	│  │       ↓                                      │          │
	│  │  Subscriber Channels (buffer: 50 each)      │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Event Types                       │          │
	│  │                                              │          │
	│  │  Secret Lifecycle:                          │          │
	│  │    - secret.resolved                         │          │
	│  │    - secret.gated_skip                       │          │
	│  │    - secret.values_produced                  │          │
	│  │    - secret.vault_updated                     │          │
	│  │    - secret.files_written                     │          │
	│  │    - secret.hooks_posted                      │          │
	│  │    - secret.done / secret.failed              │          │
	│  │                                              │          │
	│  │  User Lifecycle:                             │          │
	│  │    - user.done / user.failed                  │          │
	│  └────────────────────────────────────────────┘           │
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Subscribers                      │          │
	│  │                                              │          │
	│  │  Channels returned by Subscribe(); the      │          │
	│  │  rotate command registers none              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Event Broker:
  - Central message bus for event distribution
  - Manages subscriber lifecycle
  - Buffered publish (blocks only while the channel is full)
  - Graceful shutdown via stop channel

Event:
  - Type: rotation-lifecycle event type (secret.resolved, user.failed, etc.)
  - Timestamp: when the event occurred
  - Message: human-readable description
  - Metadata: key-value pairs (e.g. secret or user name)

Subscriber:
  - Channel that receives Event pointers
  - Buffered (50 events) to handle bursts
  - Created via broker.Subscribe()
  - Closed via broker.Unsubscribe()

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			fmt.Printf("[%s] %s: %s\n", event.Type, event.Message, event.Metadata["secret"])
		}
	}()

	broker.Publish(&events.Event{
		Type:     events.EventSecretDone,
		Message:  "secret rotated",
		Metadata: map[string]string{"secret": "grafana-admin"},
	})

# Design Patterns

Buffered Publish:
  - Publish queues the event on a 100-event buffered channel and returns
  - While that buffer is full, Publish blocks until the broadcast loop
    drains it or the broker is stopped; it does not drop the event
  - A Rotator with no Broker configured simply skips publishing (nil-checked)

Fan-Out Pattern:
  - Single event broadcast to all subscribers, each with its own channel
  - Full subscriber buffers skip rather than block the orchestrator

# Limitations

  - In-memory only, no persistence or replay
  - No guaranteed delivery (best effort)
  - No topic-based filtering; subscribers filter by Type themselves
*/
package events
