/*
Package session owns one peer's copy of the shared tournament document
and ties the other layers together: local mutations apply through the
reducers first and broadcast second, remote deltas arrive through the
sync engine's callbacks, and a debounced flush writes the result to the
local store and the optional cloud mirror.

The session is an explicit caller-owned object. main constructs exactly
one; tests construct several against an in-process hub to exercise the
multi-peer protocol without a network.

Mutation entry points validate what the reducers deliberately do not:
score clamping, the votes-on-record precondition for confirmation, and
required ids. The reducers stay pure and idempotent so redelivered or
echoed deltas are harmless.

Persistence is wholesale and debounced: after ~2s of quiescence the whole
document goes to the local backup slot, with oversized inline media
payloads diverted to the media archive, and to the mirror's app_state
keys. Flushing is suppressed while the engine's syncing window is open so
a resync burst does not trigger write loops.
*/
package session
