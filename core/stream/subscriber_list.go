package stream

import (
	"slices"
	"sync"
)

// Ticket identifies one entry of a SubscriberList.
// Tickets grow monotonically and are never reused by the same list.
type Ticket uint64

// SubscriberList is an insertion-ordered registry keyed by tickets.
//
// Tickets are handed out in insertion order, so the ticket slice is always
// sorted and removal is a binary search. Entries and tickets live in two
// parallel slices kept at the same length.
type SubscriberList[E any] struct {
	mu         sync.Mutex
	items      []E
	tickets    []Ticket
	nextTicket Ticket
}

// NewSubscriberList returns an empty list whose first ticket is 0.
func NewSubscriberList[E any]() *SubscriberList[E] {
	return &SubscriberList[E]{}
}

// Insert appends e and returns its ticket.
func (l *SubscriberList[E]) Insert(e E) Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.nextTicket
	l.nextTicket++
	l.items = append(l.items, e)
	l.tickets = append(l.tickets, t)
	return t
}

// Remove deletes the entry for t. Unknown or already removed tickets are ignored.
func (l *SubscriberList[E]) Remove(t Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, found := slices.BinarySearch(l.tickets, t)
	if !found {
		return
	}
	l.tickets = slices.Delete(l.tickets, i, i+1)
	l.items = slices.Delete(l.items, i, i+1)
}

// Snapshot returns a copy of the current entries in ticket order.
// The copy keeps every entry reachable while the caller iterates it, even if
// entries are removed from the list concurrently.
func (l *SubscriberList[E]) Snapshot() []E {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.items)
}

// RemoveAll empties the list and returns the entries it held, in ticket order.
// The ticket counter is not reset.
func (l *SubscriberList[E]) RemoveAll() []E {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := l.items
	l.items = nil
	l.tickets = nil
	return items
}

// Len returns the number of entries.
func (l *SubscriberList[E]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.items)
}

// IsEmpty reports whether the list has no entries.
func (l *SubscriberList[E]) IsEmpty() bool {
	return l.Len() == 0
}
