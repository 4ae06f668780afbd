// Package server exposes the agent system over HTTP: a JSON REST API for
// managing agents and conversations plus a WebSocket endpoint streaming chat
// turns with live tool-call activity.
package server
