// Package schema validates registry documents against embedded JSON schemas.
// Two schemas ship with the binary: the upstream StudioRack package map and
// the normalized registry envelope written to the build directory.
package schema
