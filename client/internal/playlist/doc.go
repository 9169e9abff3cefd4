// Package playlist keeps the room's shared track queue.
//
// Two lists are held: queued, the list as the room knows it, and the play
// queue of extracted tracks the playback engine can actually open. Magnet
// and torrent links go through an injected extractor to become direct
// stream URLs; plain URLs pass straight through.
//
// Every mutating operation exists in a local flavor and a publishing
// flavor, funneled through one state routine. Publishing does not touch
// local state: the relay echoes every event back to the sender, and the
// echo is what mutates the queue. Applying eagerly as well would run each
// operation twice.
package playlist
