// Package mediatypes provides shared type definitions and utilities for media
// file handling across the vault analyzer.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains primitive types,
// constants, and pure utility functions with no external dependencies beyond
// the standard library.
package mediatypes
