// Package app wires the reconciliation service together: configuration,
// logging, the session store, the pipeline services and the HTTP router,
// plus graceful startup and shutdown of the server.
package app
