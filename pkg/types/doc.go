// Package types defines the entity types, the key-value storage interface,
// backend configuration, and standard error types for the Achievement Cake
// core. Packages under internal/ and pkg/ exchange these types; none of them
// know anything about rendering.
package types
