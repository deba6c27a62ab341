// Package scheduler implements the dispatch pass that binds pending floor
// calls to cars and merges in-car destination requests.
//
// Each call is evaluated on its own, in arrival order, against the cars that
// still have room. Calls older than the priority threshold go to the nearest
// idle car or car already heading toward them; younger calls follow the
// morning or evening peak heuristics when those biases are active and the
// call matches their shape, and the nearest-car rule otherwise. A call no car
// can take stays pending and is re-evaluated on the next pass.
//
// The scheduler keeps no memory between passes: everything it needs is in the
// state it is handed and the age of each call.
package scheduler
