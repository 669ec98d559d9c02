/*
Package handlers implements the HTTP surface of one peer.

Handlers are thin: parse and validate the request, call the session, and
encode the result. Everything interesting (reducers, broadcast,
persistence) happens behind the session handle, so a handler never holds
state of its own.

# Handler Groups

  - StatusHandler: health, sync/mirror status, manual sync, online toggle
  - EntriesHandler: document read, entry CRUD, votes, confirmations, notes
  - SocialHandler: media, comments, replies, reactions, poll ballots
  - UsersHandler: registration, login, profile updates, XP stats
  - AdminHandler: reset, voting release, XP reset, snapshots

# Admin Surface

Admin endpoints check the X-Admin-PIN header against the configured PIN.
An unset PIN leaves the surface open: the deployment target is one
household's LAN, not the internet, and the check guards against fat
fingers rather than attackers.

# Error Handling

Transport noise never surfaces here: a broadcast failure degrades to
local-only operation inside the session. Error responses mean the request
itself was bad (4xx) or the local store failed (5xx).
*/
package handlers
