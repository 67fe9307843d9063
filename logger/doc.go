// Package logger provides structured logging for spinup using zerolog.
//
// It supports JSON and console output formats, log level configuration,
// and component-scoped loggers with structured fields.
//
// # Usage
//
//	log := logger.NewFromEnv("spinup").WithComponent("provision")
//	log.Info("package installed", logger.Fields("package", "cassandra"))
package logger
