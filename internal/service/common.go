// Package service holds the business operations behind the HTTP handlers
package service

import (
	"errors"
	"time"

	"estate-api/internal/apperr"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SignedURLTTL is how long minted storage URLs stay valid
const SignedURLTTL = 10 * time.Minute

// fail logs a failed operation together with who tried it and on what,
// then hands the error back. Caller mistakes go to Warn, the rest to Error.
func fail(log *zap.Logger, op, userID string, entityID any, err error) error {
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("userID", userID),
		zap.Any("entityID", entityID),
		zap.Error(err),
	}

	if apperr.IsServerSide(err) {
		log.Error("Operation failed", fields...)
	} else {
		log.Warn("Operation rejected", fields...)
	}

	return err
}

// notFound turns gorm's missing row into a NotFound with msg. Other errors
// become Internal.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, msg)
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	return apperr.Wrap(apperr.Internal, "database query failed", err)
}

func dbErr(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	return apperr.Wrap(apperr.Internal, "database query failed", err)
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.L()
	}

	return log
}
