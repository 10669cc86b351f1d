// Package websocket serves live dashboard sessions. A client sends the
// selection it wants rendered and receives the view, or an error frame
// describing why the selection could not be rendered. Every session is told
// when a new dataset starts being served.
package websocket
