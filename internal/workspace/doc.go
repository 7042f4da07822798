// Package workspace manages the per-run scratch area used while packaging.
//
// Every path handed out is unique (uuid-named) so concurrent runs on the same
// machine never collide. The scratch root is removed on Cleanup unless the
// manager was told to keep it for inspection.
package workspace
