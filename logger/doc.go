// Package logger provides structured logging for seqkit using zerolog.
//
// Loggers are scoped by component and may carry a pipeline run id taken
// from the context, so every line written while a pipeline runs can be
// correlated.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("blockstore")
//	log.Info("scan finished", logger.Fields(logger.FieldElements, n))
package logger
