// Package chat implements the room's chat feature: a message log fed by
// MESSAGE events off the channel, and a composer that knows who the local
// user is and how to get their messages out.
//
// Chat is peer-to-peer from the relay's point of view. Each client fetches
// its own identity once, stamps every outgoing message with it, posts the
// message to the room's webhook (the out-of-band mirror, e.g. a Discord
// channel) and then publishes the MESSAGE envelope so every socket in the
// room, including the sender's own, appends it to the log.
package chat
