// Package report renders analysis results for people and programs.
//
// The text format is a terminal layout styled with lipgloss; json and yaml
// emit the Analysis model as is. WriteFile replaces its target atomically.
package report
