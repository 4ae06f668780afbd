package config

import "os"

// Environment variables consulted at startup.
const (
	// EnvUserID names the caller identity forwarded to tool invocations.
	EnvUserID = "AGENTGRAPH_USER_ID"

	// DefaultUserID is used when EnvUserID is unset.
	DefaultUserID = "default"
)

// UserID resolves the caller identity for tool invocations.
func UserID() string {
	if v := os.Getenv(EnvUserID); v != "" {
		return v
	}
	return DefaultUserID
}

// Getenv returns the named variable or a fallback.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
