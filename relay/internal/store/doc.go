// Package store is the relay's in-memory room registry. Rooms carry their
// metadata (owner, title, webhook, stream source) plus the playback
// positions members have reported. A background eviction loop removes
// rooms that have seen no activity within the TTL.
package store
