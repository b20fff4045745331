// Package registry holds the per-window binding table.
//
// A binding maps an exposed name to a handler together with the parameter
// names the page stubs are generated with and a scope deciding where the stub
// lives in the page namespace:
//
//	ScopeGlobal: window.<ns>.bindings.<name>
//	ScopeWindow: window.<ns>.bindings.<lowerCamel(windowType)>.<name>
//
// Entries are added once, either from a generated BridgeBindings table or at
// runtime through RegisterFunc, and are immutable afterwards. There is no
// removal: a table lives as long as its window. Dispatch is by bare name, so a
// name may appear only once per window regardless of scope.
//
// Example Usage:
//
//	reg := registry.New("CalcWindow")
//	_ = reg.RegisterFunc("add", func(a, b float64) float64 { return a + b },
//		registry.WithParams("a", "b"))
//	b, ok := reg.Lookup("add")
package registry
