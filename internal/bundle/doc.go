// Package bundle describes portable application bundles: locating a
// candidate file, deriving its identity from the filename, hashing its
// contents and finding an icon inside its extracted payload.
package bundle
