// Package match ranks known names by similarity to an unknown one.
//
// It backs the "did you mean" hints attached to unmapped-class diagnostics:
// a document using "activityflow" or "entities" gets pointed at the class
// names the mapping table actually knows.
//
// Key functions:
//   - NormalizeName: folds case and separators before comparison
//   - Levenshtein: edit distance over runes
//   - Similarity: normalized score between 0 and 1
//   - Suggest: best candidates above MinSimilarity
package match
