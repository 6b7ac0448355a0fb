package notifier

import (
	"encoding/json"
	"testing"

	"github.com/creators-HiveHQ/CREATORSHIVEHQLLC-sub000/internal/notifier/notification"
)

// testClient adapts GenericClient to the Client interface for tests.
type testClient struct {
	GenericClient
}

func (c *testClient) Read()  {}
func (c *testClient) Write() {}

func TestClientManagerRegister(t *testing.T) {
	manager := NewClientManager()
	client := &testClient{GenericClient{ID: "c1", Send: make(chan []byte, 1)}}

	if err := manager.Register(client); err != nil {
		t.Fatal(err)
	}
	if err := manager.Register(client); err == nil {
		t.Error("registering the same client twice should fail")
	}
	if len(manager.GetClients()) != 1 {
		t.Errorf("clients = %d, expected 1", len(manager.GetClients()))
	}

	if err := manager.Unregister(client); err != nil {
		t.Fatal(err)
	}
	if len(manager.GetClients()) != 0 {
		t.Errorf("clients = %d after unregister, expected 0", len(manager.GetClients()))
	}
}

func TestBroadcast(t *testing.T) {
	t.Cleanup(notification.ReplaceGlobals(notification.NewInMemoryRepository()))
	notifier := NewNotifier()
	t.Cleanup(ReplaceGlobals(notifier))

	client := &testClient{GenericClient{ID: "c1", Send: make(chan []byte, 5)}}
	if err := notifier.Register(client); err != nil {
		t.Fatal(err)
	}

	notifier.Broadcast(notification.Notification{
		Type:    "rule_triggered",
		Level:   notification.LevelWarning,
		Title:   "Low approval rate",
		Message: "creator c1 dropped below 50",
	})

	select {
	case message := <-client.Send:
		var received notification.Notification
		if err := json.Unmarshal(message, &received); err != nil {
			t.Fatal(err)
		}
		if received.Title != "Low approval rate" {
			t.Errorf("title = %q", received.Title)
		}
		if received.ID == 0 {
			t.Error("broadcast notification should carry its history id")
		}
	default:
		t.Fatal("registered client received nothing")
	}

	history, err := notification.R().GetAll(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("history = %d notifications, expected 1", len(history))
	}
}

func TestBroadcastSaturatedClient(t *testing.T) {
	t.Cleanup(notification.ReplaceGlobals(notification.NewInMemoryRepository()))
	notifier := NewNotifier()

	full := &testClient{GenericClient{ID: "full", Send: make(chan []byte)}}
	healthy := &testClient{GenericClient{ID: "healthy", Send: make(chan []byte, 5)}}
	if err := notifier.Register(full); err != nil {
		t.Fatal(err)
	}
	if err := notifier.Register(healthy); err != nil {
		t.Fatal(err)
	}

	notifier.Broadcast(notification.Notification{Type: "rule_triggered", Title: "t"})

	select {
	case <-healthy.Send:
	default:
		t.Error("healthy client should still receive when another client is saturated")
	}
}
