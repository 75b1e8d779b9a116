package live

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToUserSubscribersOnly(t *testing.T) {
	h := NewHub(4)
	a1 := h.Subscribe("a")
	a2 := h.Subscribe("a")
	b := h.Subscribe("b")
	defer a1.Close()
	defer a2.Close()
	defer b.Close()

	n := h.Publish(Event{Type: EventScan, UserID: "a", CO2Saved: 0.525, TotalCO2Saved: 0.525})
	assert.Equal(t, 2, n)

	for _, sub := range []*Subscription{a1, a2} {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, 0.525, ev.TotalCO2Saved)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
	select {
	case ev := <-b.Events():
		t.Fatalf("unexpected event for b: %+v", ev)
	default:
	}
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	h := NewHub(1)
	sub := h.Subscribe("a")
	defer sub.Close()

	assert.Equal(t, 1, h.Publish(Event{UserID: "a"}))
	assert.Equal(t, 0, h.Publish(Event{UserID: "a"}))
	assert.Equal(t, uint64(1), h.Dropped())
}

func TestSubscriptionClose(t *testing.T) {
	h := NewHub(1)
	sub := h.Subscribe("a")
	require.Equal(t, 1, h.Subscribers("a"))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, h.Subscribers("a"))
	_, open := <-sub.Events()
	assert.False(t, open)
	assert.Equal(t, 0, h.Publish(Event{UserID: "a"}))
}

func TestHubConcurrentPublishAndClose(t *testing.T) {
	h := NewHub(8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		sub := h.Subscribe("a")
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish(Event{UserID: "a"})
			}
		}()
		go func() {
			defer wg.Done()
			sub.Close()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Subscribers("a"))
}

func TestNilHubPublish(t *testing.T) {
	var h *Hub
	assert.Equal(t, 0, h.Publish(Event{UserID: "a"}))
}
