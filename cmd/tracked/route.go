package main

import (
	"fmt"

	"tracked/internal/motion"
	"tracked/internal/resource"
)

const routeResource = "route.yaml"

// routeSpec is the schema of route.yaml.
//
//	repeat: true
//	orbit: 0.05
//	waypoints:
//	  - {x: 0, z: 4}
//	  - {x: 4, z: 4}
type routeSpec struct {
	Repeat    bool          `yaml:"repeat"`
	Orbit     float64       `yaml:"orbit"`
	Waypoints []motion.Vec3 `yaml:"waypoints"`
}

// decodeRoute decodes and validates route.yaml.
func decodeRoute(data []byte) (routeSpec, error) {
	route, err := resource.DecodeYAML[routeSpec](data)
	if err != nil {
		return routeSpec{}, err
	}
	if route.Repeat && len(route.Waypoints) < 2 {
		return routeSpec{}, fmt.Errorf("repeating route needs at least 2 waypoints, got %d", len(route.Waypoints))
	}
	return route, nil
}
