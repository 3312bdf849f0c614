package level

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"darkmanor/pkg/game/entities"
)

// Reachable returns the rooms the player can reach from the start room by
// unlocking doors. A door only leads from its room to its target.
func (l *Layout) Reachable() mapset.Set[string] {
	seen := mapset.New[string]()
	seen.Put(l.Start.Room)
	queue := []string{l.Start.Room}

	for len(queue) > 0 {
		room := queue[0]
		queue = queue[1:]
		for _, d := range l.Doors {
			if d.Room != room || seen.Has(d.Target) {
				continue
			}
			seen.Put(d.Target)
			queue = append(queue, d.Target)
		}
	}
	return seen
}

// checkReachable fails when a room can never be entered or a door sits
// outside the room it opens from.
func (l *Layout) checkReachable(rooms map[string]RoomSpec) error {
	for _, d := range l.Doors {
		r := rooms[d.Room]
		if !(Room{X: r.X, Y: r.Y, W: r.W, H: r.H}).Contains(entities.Point{X: d.X, Y: d.Y}) {
			return fmt.Errorf("door %d at (%v,%v) is outside %q", d.ID, d.X, d.Y, d.Room)
		}
	}

	seen := l.Reachable()
	var lost []string
	for _, r := range l.Rooms {
		if !seen.Has(r.Name) {
			lost = append(lost, r.Name)
		}
	}
	if len(lost) > 0 {
		sort.Strings(lost)
		return fmt.Errorf("rooms unreachable from %q: %s", l.Start.Room, strings.Join(lost, ", "))
	}
	return nil
}

// Route returns the rooms along the shortest door chain from the start
// room to room, both included. It is nil when room cannot be reached.
func (l *Layout) Route(room string) []string {
	prev := map[string]string{l.Start.Room: ""}
	queue := []string{l.Start.Room}
	for len(queue) > 0 && room != queue[0] {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range l.Doors {
			if _, seen := prev[d.Target]; d.Room != cur || seen {
				continue
			}
			prev[d.Target] = cur
			queue = append(queue, d.Target)
		}
	}
	if _, ok := prev[room]; !ok {
		return nil
	}

	var route []string
	for r := room; r != ""; r = prev[r] {
		route = append([]string{r}, route...)
	}
	return route
}
