package apperror

import (
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Log records a failed operation: rule violations at warn, anything else at error.
func Log(log logger.ZapLogger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if IsBusiness(err) || IsRetryable(err) {
		log.Warn(msg, fields...)
		return
	}
	log.Error(msg, fields...)
}
