package config

import "time"

// UI and display constants
const (
	EventsPerPage = 5

	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
)

// Timeouts
const (
	DefaultQueryTimeout = 30 * time.Second

	// Create may legitimately block for the full 30s confirmation wait, so the
	// command execution ceiling sits above it.
	CommandExecutionTimeout = 45 * time.Second

	MemberLookupTimeout = 10 * time.Second
)

// Attendee member lookups run concurrently up to this many at a time.
const MemberLookupConcurrency = 4
