/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the bridge
server, tracking HTTP requests, binding calls, page sessions and WebSocket
traffic.

# Features

- HTTP request metrics (latency, throughput, size)
- Binding call metrics (count by status, duration, in-flight)
- Dropped envelope counts by reason
- Circuit breaker state per binding
- Window and session gauges
- WebSocket connection metrics
- System metrics (uptime)

# Usage

	// Create metrics collector on a dedicated registry
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time binding calls
	timer := monitoring.NewTimer(metrics, "calcWindow", "add")
	// ... run handler ...
	timer.Stop("ok")

# Metrics Endpoint

	router.GET("/metrics", monitoring.Handler(reg))
*/
package monitoring
