package polysoup

import (
	"github.com/akmonengine/polysoup/actor"
	"github.com/akmonengine/polysoup/contact"
)

const (
	CONTACT_ENTER EventType = iota
	CONTACT_STAY
	CONTACT_EXIT
	PAIR_REJECTED
)

type pairKey struct {
	convex *actor.ConvexInstance
	static *StaticBody
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// ContactEnterEvent is sent when a pair touches for the first time
type ContactEnterEvent struct {
	Convex   *actor.ConvexInstance
	Static   *StaticBody
	Contacts []contact.FaceContact
}

func (e ContactEnterEvent) Type() EventType { return CONTACT_ENTER }

type ContactStayEvent struct {
	Convex   *actor.ConvexInstance
	Static   *StaticBody
	Contacts []contact.FaceContact
}

func (e ContactStayEvent) Type() EventType { return CONTACT_STAY }

type ContactExitEvent struct {
	Convex *actor.ConvexInstance
	Static *StaticBody
}

func (e ContactExitEvent) Type() EventType { return CONTACT_EXIT }

// PairRejectedEvent is sent for every pair whose query failed
type PairRejectedEvent struct {
	Convex *actor.ConvexInstance
	Static *StaticBody
	Err    error
}

func (e PairRejectedEvent) Type() EventType { return PAIR_REJECTED }

// EventListener - callback for events
type EventListener func(event Event)

// Events tracks touching pairs between batches and dispatches the changes.
// The zero value is ready to use.
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// lazyInit allocates the maps of a zero value Events
func (e *Events) lazyInit() {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	if e.previousActivePairs == nil {
		e.previousActivePairs = make(map[pairKey]bool)
	}
	if e.currentActivePairs == nil {
		e.currentActivePairs = make(map[pairKey]bool)
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.lazyInit()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordResults buffers Enter/Stay for touching pairs and Rejected for failed ones
func (e *Events) recordResults(results []Result) {
	e.lazyInit()
	for _, r := range results {
		if r.Err != nil {
			e.buffer = append(e.buffer, PairRejectedEvent{Convex: r.Pair.Convex, Static: r.Pair.Static, Err: r.Err})
			continue
		}
		if len(r.Contacts) == 0 {
			continue
		}

		pair := pairKey{convex: r.Pair.Convex, static: r.Pair.Static}
		e.currentActivePairs[pair] = true

		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, ContactStayEvent{Convex: pair.convex, Static: pair.static, Contacts: r.Contacts})
		} else {
			e.buffer = append(e.buffer, ContactEnterEvent{Convex: pair.convex, Static: pair.static, Contacts: r.Contacts})
		}
	}
}

// processExitEvents compares current and previous pairs to detect Exit.
// Should be called once per batch, after recordResults.
func (e *Events) processExitEvents() {
	e.lazyInit()
	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, ContactExitEvent{Convex: pair.convex, Static: pair.static})
		}
	}

	// Swap for next batch and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// forget drops the tracked pairs of a removed convex shape without an Exit event
func (e *Events) forget(convex *actor.ConvexInstance) {
	for pair := range e.previousActivePairs {
		if pair.convex == convex {
			delete(e.previousActivePairs, pair)
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processExitEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
