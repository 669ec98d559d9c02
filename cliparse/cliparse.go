package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port      int
	RedisURL  string
	MirrorURL string
	DataPath  string
	Room      string
	Nickname  string
	AdminPIN  string
}

// ParseFlags validates flags and applies environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("pizzanight", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "HTTP listen port")
	fs.StringVar(&cfg.RedisURL, "r", "", "Redis URL of the sync transport")
	fs.StringVar(&cfg.DataPath, "d", "", "Path of the local SQLite store")
	fs.StringVar(&cfg.Room, "room", "", "Logical room name")
	fs.StringVar(&cfg.Nickname, "nick", "", "Display nickname of this peer")

	// Optional extras (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.MirrorURL, "mirror", "", "PostgreSQL URL of the cloud mirror (optional)")
	fs.StringVar(&cfg.AdminPIN, "admin-pin", "", "PIN guarding admin endpoints (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3344 // default
		}
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, errors.New("Redis URL required (use -r or REDIS_URL env)")
	}

	if cfg.DataPath == "" {
		cfg.DataPath = os.Getenv("DATA_PATH")
		if cfg.DataPath == "" {
			cfg.DataPath = "pizzanight.db"
		}
	}

	if cfg.Room == "" {
		cfg.Room = os.Getenv("ROOM")
		if cfg.Room == "" {
			cfg.Room = "pizza-night"
		}
	}

	if cfg.Nickname == "" {
		cfg.Nickname = os.Getenv("NICKNAME")
	}
	if cfg.Nickname == "" {
		return Config{}, errors.New("nickname required (use -nick or NICKNAME env)")
	}

	// Optional: no mirror means local-only persistence
	if cfg.MirrorURL == "" {
		cfg.MirrorURL = os.Getenv("MIRROR_URL")
	}

	if cfg.AdminPIN == "" {
		cfg.AdminPIN = os.Getenv("ADMIN_PIN")
	}

	return cfg, nil
}
