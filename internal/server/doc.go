// Package server exposes the read pipeline over HTTP.
//
// Routes:
//
//	POST /         {"url": "..."} -> {"success":true,"qr":{"data":"..."}} or {"success":false,"error":<code>}
//	GET  /errors   error code catalog
//	GET  /health   liveness check
//	GET  /history  recent reads, when a history store and an auth token are configured
//
// POST / and GET /history require a bearer token when one is configured.
package server
