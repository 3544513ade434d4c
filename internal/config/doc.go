// Package config loads and serves the dashboard configuration.
//
// Two layers live here. The file layer reads fragsync.json: process
// settings (listen address, snapshot backend) plus a dashboard section
// describing the fragments to mount. The service layer resolves
// per-persona dashboard configurations with a TTL cache and falls back
// to a built-in configuration when a persona is unknown, mirroring how
// the shell degrades when its configuration API is down.
package config
