// Package host implements the boundary between the marshalling layer
// and the host runtime's dynamic values.
//
// It provides three capabilities consumed by the cobj package:
//
//   - scalar coercion from `any` to native widths (Coerce* functions)
//   - the contiguous-buffer export protocol for Go slices (Export)
//   - the text-encoding boundary used for read-only character pointers
//     (Codec, UTF-8 by default, any x/text encoding on request)
package host
