// Package workspace tracks the widget instances currently mounted on the
// server, bounds how many may exist, and unmounts the ones nobody has touched
// for a while.
package workspace
