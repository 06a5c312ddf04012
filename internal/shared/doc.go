// Package shared holds small collaborator contracts reused across packages,
// such as clocks and human-readable reporters.
package shared
