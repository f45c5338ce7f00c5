// Package session holds the authenticated identity of one browser session: the current user and
// bearer token, persisted under the "authToken" and "userData" storage keys.
//
// A Store moves from loading to either authenticated or unauthenticated. Restore rebuilds the
// state from storage at startup, Login/Register establish it through the backend, and
// Logout/ClearSession tear it down. ClearSession also notifies every OnInvalidate listener, which
// is how a 401 seen by the API client turns into a redirect to the login page.
package session
