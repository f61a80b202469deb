// Package schema defines scalar parameter schemas for preparation transforms.
//
// Transform parameters are string-keyed scalar values. A Params schema
// declares, per field, the scalar type, an optional enum or pattern
// restriction, and a documented default. Schemas serve two jobs:
//
//   - Validate at registration: Params.Validate rejects malformed schemas
//     before any composition can reference them.
//   - Validate and canonicalize per request: Params.Apply checks raw values,
//     reports unknown keys, fills defaults, and renders every value in fixed
//     scalar formatting so identical logical parameters always serialize
//     identically.
//
// Schemas are built with small fluent helpers:
//
//	schema.Params{
//		"heat":    schema.Enum("low", "medium", "high").WithDefault("medium"),
//		"minutes": schema.Int().WithDefault("10"),
//		"basted":  schema.Bool(),
//	}
//
// Apply collects every violation rather than stopping at the first, matching
// the exhaustive error reporting of the composition engine.
package schema
