/*
Package session keeps interactive runs alive between requests.

A Manager registers the sessions started through it under their run ID and
serializes access to each one, so that a step, an undo and a run issued
concurrently for the same ID are applied one after the other. Sessions that
stay idle longer than the configured timeout are evicted lazily.
*/
package session
