// Package pipeline runs one registry build: fetch the upstream documents,
// normalize every package, assemble the registry and write it out. The
// outcome is returned as a Result; deciding the process exit status is left
// to the caller.
package pipeline
