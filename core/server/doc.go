// Package server holds the HTTP status API configuration.
//
// The serve command owns the Fiber app; this package only defines where it
// listens and the API key that protects it.
//
// # Usage
//
//	app.Listen(cfg.Server.Address())
package server
