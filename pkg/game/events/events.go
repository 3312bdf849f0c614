// Package events is the gameplay event bus that connects interactive
// objects in the manor to the notebook and room state.
package events

// Type identifies an event variant.
type Type int

const (
	TypeHintFound Type = iota
	TypeClueFound
	TypeLessonLearned
	TypeDoorAttempted
	TypeDoorUnlocked
)

func (t Type) String() string {
	switch t {
	case TypeHintFound:
		return "hint-found"
	case TypeClueFound:
		return "clue-found"
	case TypeLessonLearned:
		return "lesson-learned"
	case TypeDoorAttempted:
		return "door-attempt"
	case TypeDoorUnlocked:
		return "door-unlocked"
	default:
		return "unknown"
	}
}

// Event is implemented only by the variants in this package.
type Event interface {
	Type() Type
}

// HintFound is emitted the first time the player reads a hint block.
type HintFound struct {
	Source string
	Text   string
}

// ClueFound is emitted the first time an NPC gives up their clue.
type ClueFound struct {
	Source string
	Text   string
}

// LessonLearned is emitted when solving a puzzle teaches something.
type LessonLearned struct {
	Text string
}

// DoorAttempted is emitted when the player tries a locked door.
type DoorAttempted struct {
	DoorID int
}

// DoorUnlocked is emitted once a door's puzzle is solved.
type DoorUnlocked struct {
	DoorID int
}

func (HintFound) Type() Type     { return TypeHintFound }
func (ClueFound) Type() Type     { return TypeClueFound }
func (LessonLearned) Type() Type { return TypeLessonLearned }
func (DoorAttempted) Type() Type { return TypeDoorAttempted }
func (DoorUnlocked) Type() Type  { return TypeDoorUnlocked }

type subscriber struct {
	id int
	fn func(Event)
}

// Bus delivers events synchronously to subscribers of that variant, in the
// order they subscribed. Handlers may emit further events; those are
// delivered immediately, nested inside the outer Emit.
//
// A Bus is not safe for concurrent use; it belongs to the game loop.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]subscriber)}
}

// Subscribe registers fn for events of type E and returns a func that
// removes the subscription.
func Subscribe[E Event](b *Bus, fn func(E)) (unsubscribe func()) {
	var zero E
	t := zero.Type()
	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscriber{
		id: id,
		fn: func(ev Event) {
			if e, ok := ev.(E); ok {
				fn(e)
			}
		},
	})
	return func() { b.remove(t, id) }
}

func (b *Bus) remove(t Type, id int) {
	subs := b.handlers[t]
	for i, s := range subs {
		if s.id == id {
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			b.handlers[t] = next
			return
		}
	}
}

// Emit delivers ev to every current subscriber of its type.
func (b *Bus) Emit(ev Event) {
	for _, s := range b.handlers[ev.Type()] {
		s.fn(ev)
	}
}

// HandlerCount returns the number of subscribers for t.
func (b *Bus) HandlerCount(t Type) int {
	return len(b.handlers[t])
}
