// Package sanitizer normalizes free-text listing and review input before
// validation and storage.
//
// All functions are idempotent: applying them twice gives the same result.
// Invalid input never produces an error; it normalizes to an empty string and
// is left for the validator to reject.
//
// Normalization includes:
//   - Text: collapse runs of whitespace, trim leading/trailing spaces
//   - Country: text normalization plus title case of each word
//   - Comparison keys: lowercase, letters and digits only, joined by "_"
package sanitizer
