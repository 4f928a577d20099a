// Package app wires the hospital report web service together.
//
// New builds, in order: telemetry providers, pipeline metrics, the report and
// health services, the chi router with its middleware chain, and the HTTP
// server. NewApplication additionally loads configuration and the process
// logger, which is what cmd/hospital-web uses.
//
// Run blocks until SIGINT or SIGTERM and then shuts the server and the
// telemetry providers down within Server.ShutdownTimeout. Errors are returned
// to the caller; the package never calls os.Exit.
package app
