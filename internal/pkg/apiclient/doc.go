// Package apiclient is the typed client of the ACH backend. Every call carries the bearer token of
// the session it was built for, decodes the backend's response envelope and reports failures as
// *APIError so callers can branch on the HTTP status.
package apiclient
