// Package server wires configuration, logging, metrics and the terminal
// session manager into a gin HTTP server.
//
// Server Lifecycle:
//  1. Load configuration from the environment
//  2. Initialize logger (production or development)
//  3. Build terminal options and the session manager
//  4. Register the terminal provider in the service registry
//  5. Setup middleware and routes
//  6. Serve until signalled, then close every session
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
