// Package timeouts defines shared timeout constants used across the lottery
// service boundaries.
package timeouts

import "time"

// GRPCDial caps the wait for a gRPC peer to report serving.
const GRPCDial = 2 * time.Second

// GRPCRequest caps the time allowed for a single request forwarded from the
// HTTP gateway to the domain services.
const GRPCRequest = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// SchedulerInterval is the default period between scheduler ticks.
const SchedulerInterval = 10 * time.Second

// EventPublish limits how long a single event publish may block.
const EventPublish = 3 * time.Second
