// Package source provides generator metadata by parsing Go source.
//
// A window type is any struct embedding window.Base. Its methods opt in with
// a directive in the doc comment:
//
//	//bridge:bind
//	//bridge:bind name=sum
//	//bridge:bind global
//
// Parameter and result types are resolved syntactically within the
// declaring package. Types from other packages resolve only when well known
// (time.Time, time.Duration, json.RawMessage); everything else degrades to
// meta.Unknown.
package source
