// Package ir provides the record types of the run log and the canonical
// encoding used for content-addressed identities.
//
// ir imports only relmodel; store, driver and target build on it.
//
// Key design constraints:
//   - NO float types in canonical values; probabilities travel as plain
//     JSON in Run.Config and are never hashed
//   - All JSON tags use snake_case
//   - Statements are ordered by seq, a per-run logical clock, never by
//     wall-clock time
package ir
