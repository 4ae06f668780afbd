// Package core contains the shared data model threaded through the
// agentgraph engine: messages and tool calls, the per-request conversation
// state, tool-call records, side-channel events and the per-session
// conversation log. Types here have no behavior beyond their own invariants;
// graph construction and execution live in the graph and engine packages.
package core
