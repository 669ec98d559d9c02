/*
Package reducer holds the pure functions that turn (document, delta) into
the next document.

Every delta kind from the sync taxonomy has exactly one reducer, applied
identically whether the delta originated locally (before broadcast) or
remotely (after receipt). Three rules hold everywhere:

  - Copy-on-write: reducers clone the document and never mutate the input,
    so a reader can never observe a half-applied delta.
  - Idempotence: the transport delivers at-least-once with no ordering, so
    applying the same delta twice must equal applying it once. Additive
    deltas (comments, replies, media) deduplicate by author-generated id;
    slot writes (votes, reactions, ballots) replace wholesale.
  - Id addressing: list elements are located by id, never by index, to be
    resilient to concurrent list mutation from other peers.

MergeFullSync is the join/resync reconciliation: remote-authoritative for
scalars, union-by-id for append-only collections.
*/
package reducer
