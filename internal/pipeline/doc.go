// Package pipeline runs the build → archive → export sequence for one
// configuration.
//
// A run walks Idle → Cleanup → Building → Verifying → Packaging → Relocating
// and ends in Done or Failed. Cleanup only exists for the legacy packaging
// strategy and macOS runs skip Packaging. Every stage blocks until its
// process or filesystem work finishes, and the first fatal stage aborts the
// rest of the run.
package pipeline
