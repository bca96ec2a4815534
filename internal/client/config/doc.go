// Package config loads runtime configuration for the gophchat CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "database_path": "/home/me/.config/gophchat/gophchat.db",
//	  "request_timeout": "10s",
//	  "log_level": "info",
//	  "log_backend": "zap"
//	}
package config
