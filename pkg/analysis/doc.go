// Package analysis turns project descriptions into model-derived signals:
// a structured summary, a keyword string for search, and pairwise
// similarity scores.
//
// Every model call runs through retry.Soft, so the operations here never
// return errors. Output that cannot be decoded is kept as raw text in a
// models.Parsed value.
package analysis
