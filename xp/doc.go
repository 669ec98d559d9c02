/*
Package xp derives gamified levels and experience points from the shared
document.

The derivation is pure and re-entrant: given the same document and the
same persisted high-water marks it always produces the same Stats, so the
UI can call it on every render. Progress is monotonic: a judge revising a
score downward can never lower a level, because levels derive
from per-user high-water marks (persisted on the UserAccount record), not
from the live instantaneous sums. Admin "resets" work by raising the
XPOffset/PointsOffset fields; history is never deleted.
*/
package xp
