// Package internal contains the implementation packages behind the coda CLI.
//
// # Package Organization
//
//   - build: source aggregation, compiler invocation, the build orchestrator,
//     diagnostics source mapping and Prometheus build metrics
//   - watcher: the watch supervisor and its fsnotify event source
//   - config: loading and saving the coda.json project descriptor
//   - registry: the embedded catalogue of installable C libraries
//   - installer: cloning registry packages into modules/
//   - scaffolding: "coda init" project layout and starter files
//   - errors: the structured error taxonomy, compiler diagnostic parsing and
//     remediation hints
//   - logging: slog based structured logging
//   - version: build information
//
// # Build Flow
//
// A build is a single pass: build.Aggregator concatenates the configured
// sources into build/temp_coda.c, then build.Compiler runs exactly one
// compiler process on it. The watcher drives the same orchestrator once per
// qualifying file system event, never running two builds at a time.
package internal
