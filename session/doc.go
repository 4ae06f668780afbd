// Package session provides storage for conversation sessions keyed by
// conversation id. The in-memory implementation is suitable for single
// process deployments; persistent backends can implement Store.
package session
