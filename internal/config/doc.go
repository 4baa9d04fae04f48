// Package config loads, normalizes, and validates storyreel configuration.
//
// Configuration is read from a TOML file (default ~/.config/storyreel/config.toml,
// with a project-local storyreel.toml fallback). Every field has a repository
// default so an absent file still yields a runnable configuration; API keys may
// also be supplied through environment variables (OPENROUTER_API_KEY,
// GOOGLE_CLOUD_API_KEY, HF_TOKEN).
package config
