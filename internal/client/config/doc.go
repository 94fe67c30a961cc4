// Package config loads runtime configuration for the videotec console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c, -config or --config. Files
//     ending in .yaml or .yml are read as YAML, anything else as JSON.
//  3. Environment variables prefixed with VIDEOTEC_ (a .env file in the
//     working directory is loaded first when present).
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a, --api string       base URL of the identity service
//	-s, --scope string     session scope
//	-b, --backend string   session store backend: memory, sqlite or redis
//	-t, --timeout int      identity request timeout in seconds (0 = none)
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	identity:
//	  base_url: http://127.0.0.1:8000
//	  request_timeout: 10s
//	session:
//	  backend: redis
//	  redis_url: redis://localhost:6379/0
//	  ttl: 12h
//	log:
//	  level: debug
package config
