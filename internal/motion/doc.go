// Package motion moves a unit toward a standing point, tracks it with an
// orbiting camera and drives both from a fixed-rate frame loop.
//
// Nothing here is safe for concurrent use. Loop.Run calls every tick
// listener and posted function on its own goroutine; movers, cameras and
// inputs are meant to be touched only from there.
package motion
