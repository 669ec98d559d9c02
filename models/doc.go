/*
Package models defines the shared tournament document and the delta
taxonomy the sync layer broadcasts.

# Document

Document is the whole replicated state: competition entries with their
score maps, the social graph (likes, comments, replies), the user registry
and the voting-released flag. It is the unit of snapshot, persistence and
replication. Clone produces a deep copy; reducers operate copy-on-write.

# Score maps

Each entry carries four independent score maps (savory/sweet ×
appearance/taste) keyed by user ID. Absence of a key means "not yet
scored"; DeleteScore (-1) is the sentinel that removes a key, because 0 is
a valid score.

# Deltas

Every mutation travels as a typed delta, one Go struct per message kind,
implementing the Delta interface. Each kind has its own merge semantics
(a VoteSet fully replaces one slot; a CommentAdd is additive and
deduplicated by id), which is why there is no single generic patch
message. DecodeDelta dispatches a raw payload to its concrete type.
*/
package models
