package scene

import "sync"

// Subscription is one registered event listener. Cancel detaches it; calling
// Cancel more than once, or after the publisher dropped it, is a no-op.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps a detach function. Publishers construct these from
// Subscribe.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Cancel detaches the listener.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// SubscriptionGroup collects the subscriptions of one transition attempt so
// they are disposed together instead of through scattered listener
// bookkeeping.
type SubscriptionGroup struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewSubscriptionGroup returns an empty group.
func NewSubscriptionGroup() *SubscriptionGroup {
	return &SubscriptionGroup{}
}

// Add tracks a subscription. Nil subscriptions are ignored.
func (g *SubscriptionGroup) Add(subs ...*Subscription) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, sub := range subs {
		if sub != nil {
			g.subs = append(g.subs, sub)
		}
	}
}

// Cancel disposes every tracked subscription and empties the group.
func (g *SubscriptionGroup) Cancel() {
	if g == nil {
		return
	}
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
}
