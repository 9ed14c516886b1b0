// Package server wires the HTTP surface: routes, handlers, request
// validation, and the refresh-token cookie. Handlers translate between JSON
// payloads and the service layer; authorization is enforced per route via the
// auth middleware.
package server
