// Package config provides functionality for managing configuration
// options for the application using command-line flags and environment
// variables.
package config

import "os"

// Options holds the configuration values for the application. Flags are
// parsed by the CLI layer; environment variables override them via
// ApplyEnv.
type Options struct {
	// Proxy is the optional outbound proxy address.
	Proxy string

	// GroupID is the destination tester group; inferred when empty.
	GroupID string

	// ContentProviderID is the team identifier; inferred when empty.
	ContentProviderID string

	// JournalDSN is the Postgres connection string of the invite journal;
	// journaling is disabled when empty.
	JournalDSN string

	// Verbose enables debug logging.
	Verbose bool
}

// ApplyEnv overrides flag values with environment variables if set.
func (o *Options) ApplyEnv() {
	if proxy := os.Getenv("TFINVITE_PROXY"); proxy != "" {
		o.Proxy = proxy
	}
	if groupID := os.Getenv("TFINVITE_GROUP_ID"); groupID != "" {
		o.GroupID = groupID
	}
	if providerID := os.Getenv("TFINVITE_PROVIDER_ID"); providerID != "" {
		o.ContentProviderID = providerID
	}
	if dsn := os.Getenv("TFINVITE_JOURNAL_DSN"); dsn != "" {
		o.JournalDSN = dsn
	}
}

// PasswordFromEnv returns the password from the environment, or "" when
// unset and the CLI must prompt for it.
func PasswordFromEnv() string {
	return os.Getenv("TFINVITE_PASSWORD")
}
