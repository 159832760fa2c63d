// Package ecs bridges birch touch events into an ECS world.
//
// [NewDonburiStore] publishes every touch an entity handles into a [Donburi]
// world as a typed event. Subscribe to [TouchEventType] in your systems:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEventStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
