package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeAndNotify(t *testing.T) {
	hub := NewHub()

	signal, unsubscribe := hub.Subscribe(CollectionPNMs)
	defer unsubscribe()

	assert.Equal(t, 1, hub.SubscriberCount(CollectionPNMs))

	hub.Notify(CollectionPNMs)

	select {
	case <-signal:
	default:
		t.Fatal("expected a pending signal after Notify")
	}
}

func TestNotifyCoalescesSignals(t *testing.T) {
	hub := NewHub()

	signal, unsubscribe := hub.Subscribe(CollectionReferrals)
	defer unsubscribe()

	// Two pushes before the subscriber wakes up collapse into one signal;
	// the subscriber re-reads the collection once and sees the latest state
	hub.Notify(CollectionReferrals)
	hub.Notify(CollectionReferrals)

	<-signal
	select {
	case <-signal:
		t.Fatal("expected the second notify to coalesce, got an extra signal")
	default:
	}
}

func TestNotifyIsScopedToCollection(t *testing.T) {
	hub := NewHub()

	pnmSignal, unsubPNMs := hub.Subscribe(CollectionPNMs)
	defer unsubPNMs()
	refSignal, unsubRefs := hub.Subscribe(CollectionReferrals)
	defer unsubRefs()

	hub.Notify(CollectionPNMs)

	select {
	case <-pnmSignal:
	default:
		t.Fatal("pnms subscriber missed its signal")
	}
	select {
	case <-refSignal:
		t.Fatal("referrals subscriber should not be signalled by a pnms change")
	default:
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()

	signal, unsubscribe := hub.Subscribe(CollectionPNMs)
	unsubscribe()

	assert.Equal(t, 0, hub.SubscriberCount(CollectionPNMs))

	// Channel is closed on unsubscribe, so a receive yields the zero value
	// immediately instead of blocking
	_, open := <-signal
	assert.False(t, open)

	// Notify after unsubscribe must not panic
	hub.Notify(CollectionPNMs)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub()

	_, unsubscribe := hub.Subscribe(CollectionPNMs)
	unsubscribe()
	unsubscribe()

	assert.Equal(t, 0, hub.SubscriberCount(CollectionPNMs))
}
