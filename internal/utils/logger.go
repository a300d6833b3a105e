package utils

import (
	"vacai/internal/logging"
)

// LogEvent prints a standardized line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	l := logging.Module(module, requestID)
	l.Info().Str("action", action).Msg(message)
}

// LogError is LogEvent at error level with the cause attached.
func LogError(requestID, module, action string, err error) {
	l := logging.Module(module, requestID)
	l.Error().Str("action", action).Err(err).Msg("failed")
}
