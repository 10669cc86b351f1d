// Package app wires the combine dashboard service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, the config file and the environment
//	2. Initialize logging and OpenTelemetry
//	3. Open the dataset source (a combine file or PostgreSQL) and the view cache
//	4. Create the dashboard, health and WebSocket services
//	5. Set up HTTP handlers and middleware
//	6. Load the dataset and start the HTTP server
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: in-flight requests complete, WebSocket
// sessions are closed, the cache and database connections are released and
// the telemetry providers are flushed. The package never calls os.Exit.
package app
