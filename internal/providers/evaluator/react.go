package evaluator

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
)

// ReactVersion is reported as React.version inside snippets.
const ReactVersion = "18.2.0"

// React is the component-framework namespace injected into every snippet.
// It renders once: elements are plain objects, state setters and effects are
// inert.
type React struct{}

// DefaultBindings returns the bindings snippets run with.
func DefaultBindings() sandbox.Bindings {
	return sandbox.Bindings{"React": React{}}
}

// Install builds the namespace inside vm.
func (React) Install(vm *goja.Runtime) goja.Value {
	ns := vm.NewObject()
	_ = ns.Set("version", ReactVersion)
	_ = ns.Set("Fragment", "Fragment")
	_ = ns.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return createElement(vm, call)
	})

	_ = ns.Set("useState", func(call goja.FunctionCall) goja.Value {
		initial := call.Argument(0)
		if fn, ok := goja.AssertFunction(initial); ok {
			if v, err := fn(goja.Undefined()); err == nil {
				initial = v
			}
		}
		setter := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
		return vm.NewArray(initial, vm.ToValue(setter))
	})
	_ = ns.Set("useRef", func(call goja.FunctionCall) goja.Value {
		ref := vm.NewObject()
		_ = ref.Set("current", call.Argument(0))
		return ref
	})
	_ = ns.Set("useMemo", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("useMemo expects a function"))
		}
		v, err := fn(goja.Undefined())
		if err != nil {
			rethrow(vm, err)
		}
		return v
	})
	_ = ns.Set("useCallback", func(call goja.FunctionCall) goja.Value {
		return call.Argument(0)
	})
	_ = ns.Set("useEffect", func(goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	_ = ns.Set("createContext", func(call goja.FunctionCall) goja.Value {
		ctx := vm.NewObject()
		_ = ctx.Set("_currentValue", call.Argument(0))
		_ = ctx.Set("Provider", "Context.Provider")
		_ = ctx.Set("Consumer", "Context.Consumer")
		return ctx
	})
	_ = ns.Set("useContext", func(call goja.FunctionCall) goja.Value {
		if obj, ok := call.Argument(0).(*goja.Object); ok {
			return obj.Get("_currentValue")
		}
		return goja.Undefined()
	})
	return ns
}

// createElement(type, props, ...children) returns {type, key, props}.
// Component functions are recorded by name.
func createElement(vm *goja.Runtime, call goja.FunctionCall) goja.Value {
	el := vm.NewObject()
	_ = el.Set("type", elementType(vm, call.Argument(0)))

	props := vm.NewObject()
	key := goja.Null()
	if src, ok := call.Argument(1).(*goja.Object); ok {
		for _, k := range src.Keys() {
			if k == "key" {
				key = src.Get(k)
				continue
			}
			_ = props.Set(k, src.Get(k))
		}
	}

	children := call.Arguments
	if len(children) > 2 {
		children = children[2:]
	} else {
		children = nil
	}
	switch len(children) {
	case 0:
	case 1:
		_ = props.Set("children", children[0])
	default:
		items := make([]interface{}, len(children))
		for i, c := range children {
			items[i] = c
		}
		_ = props.Set("children", vm.NewArray(items...))
	}

	_ = el.Set("key", key)
	_ = el.Set("props", props)
	return el
}

func elementType(vm *goja.Runtime, v goja.Value) goja.Value {
	obj, ok := v.(*goja.Object)
	if !ok {
		return v
	}
	if _, isFn := goja.AssertFunction(v); isFn {
		if name := obj.Get("name"); name != nil && name.String() != "" {
			return name
		}
		return vm.ToValue("Anonymous")
	}
	return v
}

// rethrow raises err as a JS exception from inside a native function.
func rethrow(vm *goja.Runtime, err error) {
	if ex, ok := err.(*goja.Exception); ok {
		panic(ex.Value())
	}
	panic(vm.NewGoError(err))
}
