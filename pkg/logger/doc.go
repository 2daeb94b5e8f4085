// Package logger builds configured slog.Logger instances for the kit.
//
// The factory supports JSON and text output, environment presets, and
// context extractors: functions that pull request-scoped attributes (tenant
// id, request id) out of a context.Context and attach them to every log
// record emitted with that context. Extraction happens inside a handler
// decorator so callers log through the plain slog API.
package logger
