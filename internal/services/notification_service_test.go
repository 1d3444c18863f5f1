package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/models"
)

type publishedMessage struct {
	subject string
	data    []byte
	msgID   string
}

type fakePublisher struct {
	messages []publishedMessage
	failAt   int // fail the n-th publish (1-based); 0 = never
	calls    int
}

func (p *fakePublisher) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	p.calls++
	if p.failAt != 0 && p.calls == p.failAt {
		return errors.New("nats: timeout")
	}
	p.messages = append(p.messages, publishedMessage{subject: subject, data: data, msgID: msgID})
	return nil
}

func TestLedgerServiceCredit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	balance, err := h.ledger.Credit(ctx, "dep-1", alice, 250, "nats")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 250 {
		t.Fatalf("expected balance 250, got %d", balance)
	}
	if _, err := h.ledger.Credit(ctx, "dep-1", alice, 250, "nats"); !errors.Is(err, apperrors.ErrCreditExists) {
		t.Fatalf("expected duplicate credit refused, got %v", err)
	}

	events := h.notifications(t, models.EventLedgerCredited)
	if len(events) != 1 {
		t.Fatalf("expected 1 credit notification, got %d", len(events))
	}
	var payload LedgerCreditedEvent
	if err := json.Unmarshal([]byte(events[0].Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Reference != "dep-1" || payload.Balance != 250 || payload.Source != "nats" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	account, err := h.ledger.GetAccount(ctx, alice)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account.Kind != models.AccountKindWallet || account.Balance != 250 {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestDispatchPendingPublishesInOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.initHub(t, 100)
	if _, err := h.hub.SetPauseState(ctx, admin, true); err != nil {
		t.Fatalf("pause: %v", err)
	}

	publisher := &fakePublisher{}
	notifier := NewNotificationService(h.db, publisher, nil, time.Second, 10)

	sent, err := notifier.DispatchPending(ctx)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sent != 2 || len(publisher.messages) != 2 {
		t.Fatalf("expected 2 notifications published, got %d/%d", sent, len(publisher.messages))
	}
	if publisher.messages[0].subject != EventSubjectPrefix+models.EventHubInitialized {
		t.Fatalf("expected hub initialization first, got %s", publisher.messages[0].subject)
	}
	if publisher.messages[1].subject != EventSubjectPrefix+models.EventPauseStateChanged {
		t.Fatalf("expected pause change second, got %s", publisher.messages[1].subject)
	}
	if publisher.messages[0].msgID == "" {
		t.Fatal("expected notification id used as message id")
	}

	sent, err = notifier.DispatchPending(ctx)
	if err != nil || sent != 0 {
		t.Fatalf("expected nothing left to dispatch, got %d (%v)", sent, err)
	}
}

func TestDispatchPendingStopsAtFirstFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.initHub(t, 100)
	h.fund(t, alice, 10)
	h.fund(t, bob, 20)

	publisher := &fakePublisher{failAt: 2}
	notifier := NewNotificationService(h.db, publisher, nil, time.Second, 10)

	sent, err := notifier.DispatchPending(ctx)
	if err == nil {
		t.Fatal("expected publish failure to surface")
	}
	if sent != 1 {
		t.Fatalf("expected only the first notification marked, got %d", sent)
	}

	sent, err = notifier.DispatchPending(ctx)
	if err != nil {
		t.Fatalf("retry dispatch: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected the remaining 2 notifications on retry, got %d", sent)
	}

	replayed, err := notifier.Replay(ctx, 0, models.EventLedgerCredited, 10)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(replayed) != 2 {
		t.Fatalf("expected 2 credit notifications in replay, got %d", len(replayed))
	}
	for _, n := range replayed {
		if n.PublishedAt == nil {
			t.Fatalf("expected notification %s marked published", n.ID)
		}
	}
}

func TestDispatchPendingPushesToWebSocketClients(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.initHub(t, 100)

	push := NewWebSocketPushService()
	conn := NewConnection("client-1", alice, 4)
	push.Register(conn)
	defer push.Unregister(conn)

	notifier := NewNotificationService(h.db, nil, push, time.Second, 10)
	sent, err := notifier.DispatchPending(ctx)
	if err != nil || sent != 1 {
		t.Fatalf("expected 1 notification dispatched, got %d (%v)", sent, err)
	}

	select {
	case body := <-conn.Send:
		var msg PushMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("decode push: %v", err)
		}
		if msg.Type != models.EventHubInitialized {
			t.Fatalf("expected %s, got %s", models.EventHubInitialized, msg.Type)
		}
	default:
		t.Fatal("expected a queued push message")
	}
}
