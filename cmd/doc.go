// Package cmd provides the command-line interface for coda.
//
// Configuration System:
//
//	Two layers of configuration exist:
//	1. CLI settings (log level, log format, metrics file) come from flags,
//	   then CODA_* environment variables, then defaults.
//	2. The project descriptor (coda.json) is read by internal/config. Its
//	   path comes from --config, then CODA_CONFIG_FILE, then coda.json.
//
// Environment Variables:
//
//	CODA_CONFIG_FILE:  Path to the project descriptor
//	CODA_LOG_LEVEL:    debug, info, warn or error
//	CODA_LOG_FORMAT:   text, json or pretty
//	CODA_METRICS_FILE: Prometheus textfile written after every build
//	CODA_COMPILER:     Override the descriptor's compiler
//	CODA_OUTPUT_PATH:  Override the descriptor's output path
//
// A .env file in the working directory is loaded before any of these are read.
//
// # Available Commands
//
//   - init: Create the project layout, src/main.c and coda.json
//   - build: Aggregate source_files into one unit and compile it
//   - watch: Build, then rebuild once per change in the watch directory
//   - install: Clone a registry package into modules/
//   - config: Show or validate the effective configuration
//   - version: Print build information
//
// # Command Examples
//
//	// Start a project and build it
//	coda init hello --name Hello
//	cd hello && coda build
//
//	// Rebuild on save with colourful logs
//	coda watch --log-format pretty
//
//	// Add a header-only library
//	coda install uthash
//
// # Exit Status
//
// Every command exits 0 on success and 1 on any failure. "coda watch"
// exits 0 when interrupted.
package cmd
