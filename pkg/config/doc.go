// Package config defines the Relay configuration model and its loading
// pipeline: YAML parsing, environment expansion for secrets, defaulting,
// validation, and file watching for runtime updates.
//
// Configuration is loaded once at startup with LoadConfig. The Watcher can
// then be used to re-apply the runtime-tunable subset (provider policy and
// routing strategy) to a running router when the file changes.
package config
