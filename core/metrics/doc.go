package metrics

// Package metrics defines the sinks that record simulation activity. Sinks
// like PromSink and InfluxSink record floor calls, assignments, door
// transitions and per-tick load, and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured. Optional recorder interfaces let a sink pick the events it cares
// about; only RecordTick is mandatory.
