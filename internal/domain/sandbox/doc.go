// Package sandbox implements the live code sandbox widget: an editable
// buffer seeded with a snippet that can be run, reset and copied.
//
// The widget depends only on two ports. An Evaluator runs source text with a
// fixed set of bindings and reports a value or a failure; a Clipboard accepts
// text. Output and error are mutually exclusive and always describe the most
// recent run. A successful copy raises a confirmation flag that reverts by
// itself after the feedback window.
package sandbox
