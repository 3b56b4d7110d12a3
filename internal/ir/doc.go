// Package ir provides the value types shared by the query compilers.
//
// Reference entity fields and bound query parameters are carried as IRValue,
// a sealed set of JSON-like scalars and containers. This package imports
// nothing internal so every other package can depend on it.
//
// Key design constraints:
//   - NO float types: entity ids are embedded in parameter names and must
//     render identically everywhere
//   - Canonical JSON (MarshalCanonical) is the only serialization used for
//     golden snapshots
package ir
