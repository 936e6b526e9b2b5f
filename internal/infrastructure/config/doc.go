// Package config loads service configuration from the environment.
//
// Keys are read with kelseyhightower/envconfig. Terminal settings use the
// TERMINAL_ prefix; TerminalOptions turns them into terminal.Options.
package config
