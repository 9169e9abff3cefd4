// Package stats polls the relay's Prometheus exposition for room figures
// the client surfaces in its header, most importantly how many members are
// watching. The relay publishes these as ordinary metrics, so the client
// reads them the same way a monitoring system would instead of carrying a
// dedicated opcode for it.
package stats
