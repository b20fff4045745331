// Package window hosts native window types behind the bridge.
//
// A window type embeds Base and exposes bindings either through a generated
// BridgeBindings method or by calling Bind before the window is opened.
// Each page connected to a window is a session with its own dispatcher;
// all sessions of a window share the window's sealed binding registry.
//
//	type CalcWindow struct {
//		window.Base
//	}
//
//	w, _ := window.New(&CalcWindow{}, window.Options{Source: window.FromHTML(page)}, env)
//	go w.Attach(ctx, conn)
package window
