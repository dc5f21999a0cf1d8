package evaluator

import (
	"time"

	"github.com/dop251/goja"
)

// Config defines runtime configuration
type Config struct {
	Timeout        time.Duration // Execution timeout
	MaxCallStack   int           // Maximum JS call stack depth
	EnableConsole  bool          // Capture console.log/warn/error/info
	MaxConsoleLine int           // Lines kept per run, extra output is dropped
}

// DefaultConfig returns the configuration used by the server
func DefaultConfig() Config {
	return Config{
		Timeout:        2 * time.Second,
		MaxCallStack:   1024,
		EnableConsole:  true,
		MaxConsoleLine: 200,
	}
}

// Namespace is a binding value that must be built inside the runtime that
// receives it, such as the React namespace.
type Namespace interface {
	Install(vm *goja.Runtime) goja.Value
}
