// Package output serializes an assembled registry and writes registry.json
// (indented) and registry.min.json (compact) into the build directory.
package output
