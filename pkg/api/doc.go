// Package api defines the core data types for the catering workflow engine
//
// This package contains the shared types used across the engine, including
// guest records, dietary requirements, workflow events, run state, step
// declarations, and HTTP messages
package api
