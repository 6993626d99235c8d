// Package discovery holds the conventional ports of lottery services.
package discovery

import (
	"strconv"
	"strings"
)

// ServiceLottery is the lottery gRPC and HTTP service identity.
const ServiceLottery = "lottery"

var grpcPorts = map[string]int{
	ServiceLottery: 8095,
}

// DefaultGRPCPort returns the conventional gRPC port for a service, or 0.
func DefaultGRPCPort(service string) int {
	return grpcPorts[strings.TrimSpace(service)]
}

// DefaultGRPCListenAddr returns ":port" for a service, or "" when unknown.
func DefaultGRPCListenAddr(service string) string {
	port := DefaultGRPCPort(service)
	if port <= 0 {
		return ""
	}
	return ":" + strconv.Itoa(port)
}
