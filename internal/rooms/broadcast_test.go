package rooms

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recvOne(t *testing.T, sub *Subscription) ChatMessage {
	t.Helper()
	select {
	case msg, ok := <-sub.C:
		require.True(t, ok, "subscription closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return ChatMessage{}
	}
}

func TestEnsureLiveRoomRace(t *testing.T) {
	registry := NewRegistry()

	const goroutines = 64
	results := make([]*LiveRoom, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = registry.EnsureLiveRoom("general")
		}(i)
	}
	wg.Wait()

	// exactly one live room per id, no matter how many joiners race
	for i := 1; i < goroutines; i++ {
		require.Same(t, results[0], results[i])
	}
}

func TestPublishWithoutLiveRoomIsNoop(t *testing.T) {
	registry := NewRegistry()

	delivered := registry.Publish("nobody-ever-joined", ChatMessage{ID: "m1"})
	require.Equal(t, 0, delivered)
	require.Equal(t, 0, registry.Subscribers("nobody-ever-joined"))
}

func TestSubscriberReceivesInOrder(t *testing.T) {
	live := newLiveRoom("general")
	sub := live.Subscribe()
	defer sub.Close()

	const n = 50
	for i := 0; i < n; i++ {
		live.Publish(ChatMessage{ID: fmt.Sprintf("m%d", i)})
	}

	for i := 0; i < n; i++ {
		msg := recvOne(t, sub)
		require.Equal(t, fmt.Sprintf("m%d", i), msg.ID)
	}
	require.Zero(t, sub.Lagged())
}

func TestLaggedSubscriberDoesNotDisturbOthers(t *testing.T) {
	live := newLiveRoom("general")

	stalled := live.Subscribe()
	defer stalled.Close()

	healthy := live.Subscribe()
	defer healthy.Close()

	received := make(chan string, SendBuffer+100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range healthy.C {
			received <- msg.ID
		}
	}()

	const extra = 25
	// publish never blocks, even though one subscriber consumes nothing
	for i := 0; i < SendBuffer+extra; i++ {
		live.Publish(ChatMessage{ID: fmt.Sprintf("m%d", i)})
	}

	healthy.Close()
	<-done
	// every message either reached the healthy subscriber or was counted
	// as lag; none are lost silently and the publisher never blocked
	require.EqualValues(t, SendBuffer+extra, int64(len(received))+healthy.Lagged())

	// the stalled subscriber kept the first SendBuffer messages and
	// observes the gap as a lag counter, not a broken stream
	require.EqualValues(t, extra, stalled.Lagged())
	require.EqualValues(t, 0, stalled.Lagged())

	drained := 0
	for {
		select {
		case <-stalled.C:
			drained++
			continue
		default:
		}
		break
	}
	require.Equal(t, SendBuffer, drained)

	// it keeps receiving once it drains
	live.Publish(ChatMessage{ID: "after-lag"})
	require.Equal(t, "after-lag", recvOne(t, stalled).ID)
}

func TestSubscriptionClose(t *testing.T) {
	live := newLiveRoom("general")
	sub := live.Subscribe()

	require.Equal(t, 1, live.Subscribers())

	sub.Close()
	sub.Close() // idempotent

	require.Equal(t, 0, live.Subscribers())

	_, ok := <-sub.C
	require.False(t, ok)

	// publish after close must not panic or deliver
	require.Equal(t, 0, live.Publish(ChatMessage{ID: "late"}))
}
