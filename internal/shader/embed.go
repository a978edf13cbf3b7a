// Package shader carries the GPU compute kernel's source as a checked-in
// asset, embedded into the binary for the ipl3gpu companion process to
// compile to SPIR-V. This package never invokes a shader compiler itself;
// see internal/gpu for the boundary.
package shader

import _ "embed"

//go:embed hasher.comp
var Source string
