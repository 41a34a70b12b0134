// Package server implements the HTTP API server for the catering engine
//
// This package provides REST endpoints for starting and inspecting runs,
// serving capabilities to remote engines, health checks, and WebSocket
// event streaming
package server
