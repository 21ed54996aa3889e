// Package cli defines the Cobra command tree for the studiorack-registry CLI.
// The root command and "build" run the full registry build; the other
// commands inspect the configuration or dry-run the pipeline. Commands only
// resolve configuration, set up logging and format output; the work happens
// in internal/pipeline.
package cli
