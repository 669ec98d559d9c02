/*
Package p2p implements the peer synchronization engine: the broadcast
membership, typed delta exchange and join-time resync protocol that keep
every participant's document converging without a central authority.

The transport is the Room interface: fire-and-forget publish/subscribe
with one channel per delta kind. RedisRoom is the production
implementation over Redis pub/sub; MemHub is an in-process fabric for
tests. Both echo a peer's own publishes back to it, so every payload
travels inside an envelope carrying the sender's peer id and the engine
drops its own echo on receipt.

A joining engine announces presence, broadcasts a sync-request and opens
a short syncing window. Established peers holding a non-empty document
answer with a full-sync after a randomized jitter so a crowded room does
not reply in unison. Full-syncs are always handed to the session, which
merges rather than overwrites; the window only tells the session to hold
off persistence while replies are still arriving.

Peer count comes from the transport's own subscriber registry, polled
periodically, never from counting application messages.
*/
package p2p
