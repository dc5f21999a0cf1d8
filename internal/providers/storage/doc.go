// Package storage persists learner settings and quiz progress in SQLite
// (pure Go driver, no cgo). Settings back the theme flag; every submitted
// quiz is recorded as an Attempt and summarised with gonum statistics.
package storage
