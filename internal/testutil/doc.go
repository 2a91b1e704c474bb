// Package testutil holds fixtures shared by package tests: a small
// catalog, a scripted Executor and a deterministic run ID sequence.
package testutil
