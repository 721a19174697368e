// internal/watcher/doc.go

// Package watcher turns OS connectivity change events into classified,
// fanned-out notifications.
//
// A Watcher owns exactly one OS source handle. The first Subscribe
// activates it, the last Unsubscribe deactivates it. Status can be called
// at any time and never fails; OS read failures degrade to UNREACHABLE.
package watcher
