/*
Package main provides the entry point for one pizzanight peer.

pizzanight is a collaborative pizza-tournament scoreboard: a group scores
entries across two categories, confirms votes, shares photos and
comments, and every participant's device keeps a full copy of the state.
Peers converge by broadcasting typed deltas over a shared room; there is
no central authority.

# Starting a Peer

The peer requires environment variables or CLI flags for configuration:

	REDIS_URL=redis://... NICKNAME=@ana go run main.go

Or with flags:

	go run main.go -p 3344 -r "redis://..." -nick @ana

# Configuration

Required settings:

  - REDIS_URL (-r): Redis connection string of the sync transport
  - NICKNAME (-nick): display nickname of this peer

Optional settings:

  - PORT (-p): HTTP listen port (default: 3344)
  - DATA_PATH (-d): local SQLite store path (default: pizzanight.db)
  - ROOM (-room): logical room name (default: pizza-night)
  - MIRROR_URL (-mirror): PostgreSQL cloud mirror (off without it)
  - ADMIN_PIN (-admin-pin): PIN guarding the admin endpoints

# Architecture

The peer uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (entries, social, users, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - session: document ownership, hydration, debounced persistence
  - p2p: sync engine and broadcast transport
  - reducer: pure, idempotent delta application and full-sync merge
  - models: the shared document and the delta taxonomy
  - xp: derived gamification stats
  - localstore: SQLite backups, snapshots and media archive
  - cloudmirror: best-effort PostgreSQL replication
  - sanitize: free-text and payload cleaning
  - auth: nicknames, PINs, tokens and peer ids
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
