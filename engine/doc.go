// Package engine drives compiled workflow graphs against per-request
// conversation state. The Executor interprets the graph as a bounded loop of
// discrete steps; the Collector aggregates step events into the ordered
// user-visible response list and tool-call records; the Runner wraps both
// behind the turn API (Run/Resume) and commits completed turns to the
// session log. A best-effort Emitter mirrors tool activity to live
// subscribers without ever blocking a turn.
package engine
