package ecs

import (
	"github.com/phanxgames/birch"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// TouchEventType is the Donburi event type for birch touch events.
// Subscribe to it in your ECS systems to receive begin, move and end events.
var TouchEventType = events.NewEventType[birch.TouchEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventStore backed by a Donburi world.
// Touch events are published to TouchEventType and can be consumed with
// Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) birch.EventStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitTouch(event birch.TouchEvent) {
	TouchEventType.Publish(s.world, event)
}
