// Package infra holds the adapters that connect the simulation to the
// outside world: zerolog logging, Prometheus and InfluxDB sinks, the MQTT
// building bridge and Sentry. They implement interfaces declared under core
// and are wired together by the app package.
package infra
