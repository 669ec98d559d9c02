/*
Package cloudmirror replicates the shared document to a remote PostgreSQL
key-value table, best effort and non-authoritative.

Two app_state keys ("pizzas" and "social_data") hold the entries array and
the social graph, each overwritten wholesale on save; a users table mirrors
the registry row-per-user. The in-memory document stays the source of
truth; the mirror only seeds a fresh session and acts as a tie-breaker.

If a table is absent server-side, the first "relation does not exist"
(42P01) error flips that table's internal flag and every further call to
it short-circuits without retrying: a permanent-until-restart circuit
breaker, not retry-with-backoff. The flags are surfaced to admins through
Status; nothing here ever blocks an ordinary user.
*/
package cloudmirror
