// Package banquet is an event-driven catering workflow engine. It analyzes
// guest dietary requirements, fans out per-requirement recipe research, and
// joins the branches into a single catering report.
package banquet

const (
	// Name is the service name reported in logs and health checks
	Name = "banquet"

	// Version is the service version reported in logs and health checks
	Version = "0.9.0"
)
