// Package cli provides the roster command-line interface.
//
// Global configuration flags (see package config) may appear anywhere on the
// command line; they are consumed by config.LoadConfig and removed before
// the remaining arguments reach the cobra command tree.
//
// Commands:
//   - migrate: apply database migrations
//   - mint, parse, sequence: identifier diagnostics
//   - user create | get | update | login | status
//   - attendance checkin | checkout | list
//
// Users are printed as JSON through models.PublicUser, so credentials never
// reach the output.
package cli
