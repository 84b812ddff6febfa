// Package http contains the HTTP transport layer: chi handlers that expose
// session creation, spreadsheet upload and reconciliation, result views and
// report downloads. Handlers translate domain errors into RFC 7807 problem
// responses and hold no state of their own; everything lives in the
// session store behind the service layer.
package http
