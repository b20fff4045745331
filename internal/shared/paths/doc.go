// Package paths provides the standardized HTTP route layout of the bridge.
//
// The server, the Go client and windows that link to each other all build
// URLs from here so the layout stays in one place.
//
// # Route Structure
//
//	/health
//	/metrics
//	/debug/log-level      (development only)
//	/windows/
//	  └── <name>/           (page)
//	      ├── manifest      (bindings callable from the page)
//	      ├── bridge.js     (runtime and stubs)
//	      ├── ws            (bridge WebSocket)
//	      └── app/<path>    (window assets)
//
// # Usage
//
//	import "github.com/GriffinCanCode/webbridge/internal/shared/paths"
//
//	calc := paths.For("calcWindow")
//	calc.Page()         // /windows/calcWindow/
//	calc.Socket()       // /windows/calcWindow/ws
//	calc.Asset("a.js")  // /windows/calcWindow/app/a.js
package paths
