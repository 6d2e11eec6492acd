// Package app drives the UI: a stack of controllers, the lifecycle hooks
// fired as they are pushed and popped, and the periodic tick that draws and
// displays the active controller's window.
//
// All of it runs on one render queue, so navigation never interleaves with a
// draw or display pass.
package app
