// Package driver runs generation against a target.
//
// A Runner owns a catalog and a grammar config. Run seeds a fresh
// grammar.Session per run, renders Count statements, hands each to the
// Executor (or skips execution in a dry run), and appends the outcome to
// the Recorder. Replay regenerates a recorded run from its stored seed and
// config and reports every statement whose text differs, which is how a
// failing statement is reproduced and how generator determinism is
// checked across versions.
//
// Thread-safety model:
//   - Runner is immutable after New and may be shared
//   - Each Run/Replay call owns its own Session; calls may run concurrently
//     if the Executor and Recorder allow it
package driver
