// Package registry defines the normalized OwlPlug registry model and assembles
// normalized packages into the registry envelope.
//
// Packages encode in slug order and versions in version order, independent of
// how they were produced, so that repeated runs over the same upstream input
// serialize byte-identically.
package registry
