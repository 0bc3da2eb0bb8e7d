// Package monitor polls the status of every discovered fan on a fixed
// interval and keeps the fan set aligned with discovery snapshots. It is
// the piece the tray and terminal UIs sit on: they read the update
// channel instead of talking to devices directly.
package monitor
