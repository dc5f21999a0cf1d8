// Package main runs the LearnReact lesson server.
//
// The server hosts the lesson catalog and the interactive widgets lessons
// embed: code sandboxes evaluated in a pooled JavaScript runtime and
// multiple-choice quizzes. It also provides the shared clipboard, the
// dark-mode flag and per-learner quiz progress.
//
//	Browser → REST (/lessons, /sandboxes, /quizzes, /theme, /progress)
//	        → WebSocket (/stream) for widget snapshots and broadcasts
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -content ./lessons -watch
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
