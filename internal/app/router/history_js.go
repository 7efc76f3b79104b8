//go:build js && wasm

package router

import "syscall/js"

// BrowserHistory drives window.history and listens for popstate.
type BrowserHistory struct {
	window js.Value
}

func NewBrowserHistory() *BrowserHistory {
	return &BrowserHistory{window: js.Global().Get("window")}
}

func (h *BrowserHistory) Location() string {
	loc := h.window.Get("location")
	return loc.Get("pathname").String() + loc.Get("search").String()
}

func (h *BrowserHistory) Push(location string) {
	h.window.Get("history").Call("pushState", js.ValueOf(map[string]any{}), "", location)
}

// Back asks the browser to go back when the tab has somewhere to go. The
// resulting popstate reaches Listen callbacks asynchronously.
func (h *BrowserHistory) Back() bool {
	history := h.window.Get("history")
	if history.Get("length").Int() <= 1 {
		return false
	}
	history.Call("back")
	return true
}

func (h *BrowserHistory) Listen(fn func(string)) func() {
	cb := js.FuncOf(func(js.Value, []js.Value) any {
		fn(h.Location())
		return nil
	})
	h.window.Call("addEventListener", "popstate", cb)
	return func() {
		h.window.Call("removeEventListener", "popstate", cb)
		cb.Release()
	}
}
