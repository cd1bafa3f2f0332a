// Package diagnostic collects the warnings, errors and informational notes
// produced while converting a provenance document.
//
// Key capabilities:
//   - Unmapped class warnings with "did you mean" suggestions
//   - Notes for classes that are intentionally folded into another class
//   - Instance-id collision and unresolved-reference reports
//   - Mapping table validation errors
//   - One-line emission through a zap logger
package diagnostic
