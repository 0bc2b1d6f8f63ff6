// Package types defines the menu records (categories and dishes), the
// document envelope they are persisted in, the public view shapes served to
// the website, and the standard errors shared by the storage packages.
package types
