package motion

import (
	"slices"

	"tracked/internal/event"
)

// Follower walks a mover through waypoints, handing it the next standing
// point each time it stops on the current one.
type Follower struct {
	mover     *Mover
	waypoints []Vec3
	next      int
	repeat    bool

	arrived        *event.Notifier1[*Follower, int]
	triggerArrived *event.Trigger1[*Follower, int]
}

func NewFollower(mover *Mover) *Follower {
	follower := &Follower{mover: mover}
	follower.arrived, follower.triggerArrived = event.New1[*Follower, int](follower)
	return follower
}

// Arrived fires with the index of each waypoint reached.
func (f *Follower) Arrived() *event.Notifier1[*Follower, int] { return f.arrived }

// SetWaypoints replaces the route and heads for its first point. With repeat
// the route starts over after the last point.
func (f *Follower) SetWaypoints(waypoints []Vec3, repeat bool) error {
	f.waypoints = slices.Clone(waypoints)
	f.repeat = repeat
	f.next = 0
	if len(f.waypoints) == 0 {
		return nil
	}
	return f.mover.MoveTo(f.waypoints[0])
}

// Remaining returns the number of waypoints not reached yet in this pass.
func (f *Follower) Remaining() int {
	return len(f.waypoints) - f.next
}

// Done reports whether a non-repeating route has been completed.
func (f *Follower) Done() bool {
	return !f.repeat && f.next >= len(f.waypoints)
}

// Update checks for arrival. Call it after the mover's own Update.
func (f *Follower) Update() error {
	if f.next >= len(f.waypoints) || !f.mover.Stopped() {
		return nil
	}
	reached := f.next
	f.next++
	if f.next == len(f.waypoints) && f.repeat {
		f.next = 0
	}
	f.triggerArrived.Invoke(reached)
	if f.next < len(f.waypoints) {
		return f.mover.MoveTo(f.waypoints[f.next])
	}
	return nil
}

func (f *Follower) Close() error {
	f.triggerArrived.Dispose()
	return nil
}
