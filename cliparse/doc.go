/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: HTTP listen port (default: 3344)
  - RedisURL: Redis connection string of the sync transport (required)
  - DataPath: path of the local SQLite store (default: pizzanight.db)
  - Room: logical room name shared by all peers (default: pizza-night)
  - Nickname: display nickname of this peer (required)
  - MirrorURL: PostgreSQL connection string of the cloud mirror (optional)
  - AdminPIN: PIN guarding the admin endpoints (optional)

# CLI Flags

	-p          HTTP listen port
	-r          Redis URL
	-d          Local store path
	-room       Room name
	-nick       Nickname
	-mirror     Cloud mirror URL
	-admin-pin  Admin PIN

# Environment Variables

Flags fall back to environment variables:

	PORT       → -p
	REDIS_URL  → -r
	DATA_PATH  → -d
	ROOM       → -room
	NICKNAME   → -nick
	MIRROR_URL → -mirror
	ADMIN_PIN  → -admin-pin

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - REDIS_URL must be provided
  - NICKNAME must be provided

MIRROR_URL is deliberately optional: without it the session runs with
local persistence only.

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	store, err := localstore.Open(cfg.DataPath)
	// ...
	mux := router.NewRouter(sess, cfg)
*/
package cliparse
