package services

import (
	"testing"

	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"
)

func notification(eventType string, record types.Address) *models.Notification {
	return &models.Notification{
		ID:            eventType + "-" + record.Hex(),
		EventType:     eventType,
		RecordAddress: record,
		Payload:       `{"ok":true}`,
		Timestamp:     1700000000,
	}
}

func TestBroadcastFilters(t *testing.T) {
	push := NewWebSocketPushService()

	everything := NewConnection("all", alice, 8)
	pactsOnly := NewConnection("pacts", bob, 8)
	pactsOnly.Subscribe([]string{models.EventPactContributed}, nil)
	oneRecord := NewConnection("record", carol, 8)
	oneRecord.Subscribe(nil, []types.Address{addr(0x10)})

	for _, c := range []*Connection{everything, pactsOnly, oneRecord} {
		push.Register(c)
	}
	if push.ConnectionCount() != 3 {
		t.Fatalf("expected 3 connections, got %d", push.ConnectionCount())
	}

	if got := push.Broadcast(notification(models.EventPactContributed, addr(0x10))); got != 3 {
		t.Fatalf("expected all 3 clients to receive, got %d", got)
	}
	if got := push.Broadcast(notification(models.EventBridgeInitiated, addr(0x10))); got != 2 {
		t.Fatalf("expected 2 clients to receive bridge event, got %d", got)
	}
	if got := push.Broadcast(notification(models.EventBridgeInitiated, addr(0x11))); got != 1 {
		t.Fatalf("expected only the unfiltered client, got %d", got)
	}

	oneRecord.Subscribe(nil, nil)
	if got := push.Broadcast(notification(models.EventBridgeInitiated, addr(0x11))); got != 2 {
		t.Fatalf("expected cleared filter to receive, got %d", got)
	}

	push.Unregister(pactsOnly)
	if push.ConnectionCount() != 2 {
		t.Fatalf("expected 2 connections, got %d", push.ConnectionCount())
	}
}

func TestBroadcastDropsWhenQueueFull(t *testing.T) {
	push := NewWebSocketPushService()
	slow := NewConnection("slow", alice, 1)
	push.Register(slow)

	if got := push.Broadcast(notification(models.EventHubInitialized, addr(0x20))); got != 1 {
		t.Fatalf("expected first message queued, got %d", got)
	}
	if got := push.Broadcast(notification(models.EventHubInitialized, addr(0x21))); got != 0 {
		t.Fatalf("expected second message dropped, got %d", got)
	}
}

func TestSendTo(t *testing.T) {
	push := NewWebSocketPushService()
	conn := NewConnection("c1", alice, 1)
	push.Register(conn)

	if !push.SendTo("c1", map[string]string{"type": "pong"}) {
		t.Fatal("expected message queued")
	}
	if push.SendTo("missing", map[string]string{"type": "pong"}) {
		t.Fatal("expected unknown client to fail")
	}
	if got := string(<-conn.Send); got != `{"type":"pong"}` {
		t.Fatalf("unexpected body %s", got)
	}
}
