// Package logger provides the structured logging interface used across
// scoreahack.
//
// It wraps zerolog with a small interface so components can be handed a
// scoped logger (run ID, candidate ID, provider) and tests can swap in
// NewTestLogger or NewNopLogger.
//
// Basic usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.Info("Application started")
//	logger.WithField("project_id", id).Info("Fetching project")
//
// Run-scoped logging:
//
//	ctx = logger.ContextWithRunID(ctx, runID)
//	log := logger.GetLogger().WithContext(ctx) // carries run_id
//
// Console output goes to stderr. When Logging.File is set, lines are also
// appended to that file as JSON.
package logger
