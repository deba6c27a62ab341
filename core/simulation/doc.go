// Package simulation owns the live simulation state and drives it.
//
// An Engine runs two periodic tasks once started: the call generator, firing
// every 1/callArrivalRate seconds, and the motion task, firing every
// 1/tickRate seconds, which runs a scheduler pass and then advances every car
// by one step. Both tasks and every external mutation are serialised by a
// single mutex around the state. Readers only ever receive deep copies.
//
// The engine does not log. Everything worth observing is published on the
// optional event bus as a value from the events package.
package simulation
