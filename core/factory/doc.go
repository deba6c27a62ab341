// Package factory builds pluggable modules from configuration. A module is a
// type name plus a map of raw settings; the factory registered under that
// name decodes the settings and returns the implementation.
//
// Metrics sinks and assignment journals are selected this way:
//
//	logging:
//	  backend: sqlite
//	  path: assignments.db
//	metrics:
//	  sinks:
//	    - type: prometheus
//	    - type: influx
//	      conf: {url: "http://influx:8086", org: lab, bucket: elevators}
package factory
