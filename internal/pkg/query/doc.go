// Package query is the request cache and coordinator sitting between the views and the backend
// client. Reads are cached per canonical key with a staleness tier and coalesced while in flight.
// Writes go through an explicit transaction (Begin, Apply, Commit or Rollback, Settle) so an
// optimistic update can always be restored exactly when the backend rejects it.
package query
