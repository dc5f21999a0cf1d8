// Package evaluator runs sandbox snippets with the goja JavaScript engine.
//
// A snippet becomes the body of a function whose parameters are the injected
// bindings, so it can return a value at top level and sees nothing but those
// bindings and the language built-ins. require, process, module and exports
// are undefined, timers never fire, console output is captured, and runs are
// interrupted after the configured timeout.
//
// Runtimes are pooled and replaced with a fresh VM after each run.
package evaluator
