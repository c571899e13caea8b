// Package pipeline orchestrates an originality analysis.
//
// A run fetches the source project, asks the model for a structured
// summary and a keyword string in parallel, searches Devpost with the
// keywords, scores every candidate against the source on a bounded worker
// pool and ranks the results. Only a missing source project, a too-short
// description or invalid input fail a run; every other failure drops the
// affected field or candidate and is logged.
package pipeline
