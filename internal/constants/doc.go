// Package constants holds fixed user-facing text: the ASCII logo, the
// tagline and the console lines printed on startup and shutdown.
package constants
