// Package driving provides interfaces for application entry points
// (primary/inbound ports) exposed to the CLI and any future surfaces.
package driving
