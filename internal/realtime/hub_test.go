package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type capturedEvent struct {
	Event string
	Data  []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (f *fakePublisher) PublishSessionEvent(event string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, capturedEvent{Event: event, Data: payload})
	return nil
}

func testClient(id string, buffer int) *Client {
	return &Client{ID: id, send: make(chan WSMessage, buffer)}
}

func receive(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	default:
		t.Fatalf("client %s received nothing", c.ID)
		return WSMessage{}
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	a := testClient("a", 8)
	b := testClient("b", 8)
	hub.register(a)
	hub.register(b)

	hub.Broadcast("timer_update", map[string]int{"timeRemaining": 9})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Event != "timer_update" {
			t.Errorf("client %s: expected timer_update, got %s", c.ID, msg.Event)
		}
		var payload struct {
			TimeRemaining int `json:"timeRemaining"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.TimeRemaining != 9 {
			t.Errorf("client %s: bad payload %s", c.ID, msg.Data)
		}
	}
}

func TestSendToSingleClient(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	a := testClient("a", 8)
	b := testClient("b", 8)
	hub.register(a)
	hub.register(b)

	hub.SendTo("a", "answer_submitted", map[string]bool{"success": true})

	msg := receive(t, a)
	if msg.Event != "answer_submitted" {
		t.Errorf("expected answer_submitted, got %s", msg.Event)
	}
	select {
	case msg := <-b.send:
		t.Errorf("client b must not receive a unicast to a, got %s", msg.Event)
	default:
	}
}

func TestSendToUnknownClient(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	// Must not panic or block.
	hub.SendTo("ghost", "poll_result", map[string]int{})
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	a := testClient("a", 8)
	hub.register(a)
	hub.unregister(a)

	hub.Broadcast("poll_ended", map[string]int{})

	select {
	case msg := <-a.send:
		t.Errorf("unregistered client must not receive events, got %s", msg.Event)
	default:
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestBroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	full := testClient("full", 1)
	full.send <- WSMessage{Event: "old"}
	ok := testClient("ok", 8)
	hub.register(full)
	hub.register(ok)

	// Must not block on the full client.
	hub.Broadcast("new_question", map[string]string{"question": "q"})

	msg := receive(t, ok)
	if msg.Event != "new_question" {
		t.Errorf("expected new_question, got %s", msg.Event)
	}
	if msg := receive(t, full); msg.Event != "old" {
		t.Errorf("full client's queue must be untouched, got %s", msg.Event)
	}
}

func TestBroadcastMirrorsToPublisher(t *testing.T) {
	mirror := &fakePublisher{}
	hub := NewHub(zap.NewNop(), mirror)
	a := testClient("a", 8)
	hub.register(a)

	hub.Broadcast("poll_ended", map[string]int{"totalResponses": 0})
	hub.SendTo("a", "poll_result", map[string]int{})

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	if len(mirror.events) != 1 {
		t.Fatalf("expected only broadcasts mirrored, got %d events", len(mirror.events))
	}
	if mirror.events[0].Event != "poll_ended" {
		t.Errorf("expected poll_ended mirrored, got %s", mirror.events[0].Event)
	}
}
