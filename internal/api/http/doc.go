// Package http exposes terminal sessions over a JSON API.
//
// Routes are mounted by the server package; handlers only translate between
// gin requests and the terminal Manager or the service registry.
package http
