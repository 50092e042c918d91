// Package kernel provides small domain primitives shared by the order model and
// its adapters.
//
// The package includes:
//   - UUID: a value object for generated identifiers such as payment
//     confirmation numbers and published event ids
//
// Primitives are immutable and safe for concurrent use.
package kernel
