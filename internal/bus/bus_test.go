package bus

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestBus() *PubSubBus {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPubSubBus_DeliversToTopicSubscribers(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	decoded := b.Subscribe("decoded")
	both := b.Subscribe("decoded", "undecodable")

	b.Publish("undecodable", "bad")
	b.Publish("decoded", "good")

	if got := receive(t, decoded); got != "good" {
		t.Fatalf("unexpected message on single topic subscription: %v", got)
	}
	first, second := receive(t, both), receive(t, both)
	if first != "bad" || second != "good" {
		t.Fatalf("unexpected order on multi topic subscription: %v, %v", first, second)
	}
}

func TestPubSubBus_UnsubscribeClosesChannel(t *testing.T) {
	b := newTestBus()
	defer b.Close()

	sub := b.Subscribe("decoded")
	b.Unsubscribe(sub)

	select {
	case _, ok := <-sub:
		if ok {
			t.Fatalf("expected closed subscription")
		}
	case <-time.After(time.Second):
		t.Fatalf("subscription was not closed")
	}
}

func TestPayloadType(t *testing.T) {
	if got := payloadType(nil); got != "<nil>" {
		t.Fatalf("unexpected nil payload type: %q", got)
	}
	if got := payloadType(42); got != "int" {
		t.Fatalf("unexpected payload type: %q", got)
	}
}

func receive(t *testing.T, sub Subscription) any {
	t.Helper()
	select {
	case msg := <-sub:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for message")
	}

	return nil
}

func TestPubSubBus_CloseDeliversPendingAndIsIdempotent(t *testing.T) {
	b := newTestBus()
	sub := b.Subscribe("decoded")

	b.Publish("decoded", 1)
	b.Publish("decoded", 2)
	b.Close()
	b.Close()

	var got []any
	for msg := range sub {
		got = append(got, msg)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected buffered messages before close, got %v", got)
	}
}
