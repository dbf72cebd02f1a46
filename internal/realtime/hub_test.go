package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/0unveiled/backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubResilienceReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := UserChannel(uuid.New().String())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventAnalysisProgress, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventAnalysisProgress, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Data.(map[string]any)["seq"] != 1 {
		t.Fatalf("first message out of order: got=%v", gotFirst.Data)
	}
	if gotSecond.Data.(map[string]any)["seq"] != 2 {
		t.Fatalf("second message out of order: got=%v", gotSecond.Data)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	reconnect := SSEMessage{Channel: channel, Event: SSEEventAnalysisComplete, Data: map[string]any{"seq": 3}}
	hub.Broadcast(reconnect)
	gotReconnect := recvMessage(t, clientB.Outbound, time.Second)
	if gotReconnect.Event != SSEEventAnalysisComplete {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventAnalysisComplete, gotReconnect.Event)
	}
}

func TestSSEHubBroadcastSkipsOtherChannels(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))

	subscribed := hub.NewSSEClient(uuid.New())
	bystander := hub.NewSSEClient(uuid.New())
	hub.AddChannel(subscribed, UserChannel(subscribed.UserID.String()))
	hub.AddChannel(bystander, UserChannel(bystander.UserID.String()))

	hub.Broadcast(SSEMessage{
		Channel: UserChannel(subscribed.UserID.String()),
		Event:   SSEEventNotificationCreated,
	})

	recvMessage(t, subscribed.Outbound, time.Second)
	select {
	case msg := <-bystander.Outbound:
		t.Fatalf("bystander received message for another user's channel: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSEHubDropsWhenOutboundFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := UserChannel(uuid.New().String())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	// Outbound buffers 10; nothing drains it here, so extra broadcasts must be
	// dropped without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 25; i++ {
			hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAnalysisProgress, Data: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a full outbound buffer")
	}
	if got := len(client.Outbound); got != 10 {
		t.Fatalf("outbound buffer = %d messages, want 10", got)
	}
}
