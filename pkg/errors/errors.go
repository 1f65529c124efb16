package errors

import (
	"errors"
	"fmt"
)

// Kind 稳定的业务错误码，客户端可据此分支处理而无需匹配文本
type Kind string

const (
	KindValidation            Kind = "VALIDATION_FAILED"
	KindStudentNotFound       Kind = "STUDENT_NOT_FOUND"
	KindRecreationNotFound    Kind = "RECREATION_NOT_FOUND"
	KindParticipationNotFound Kind = "PARTICIPATION_NOT_FOUND"
	KindEventNotFound         Kind = "EVENT_NOT_FOUND"
	KindEntryNotFound         Kind = "ENTRY_NOT_FOUND"
	KindAlreadyRegistered     Kind = "ALREADY_REGISTERED"
	KindRecreationFull        Kind = "RECREATION_FULL"
	KindAlreadyEntered        Kind = "ALREADY_ENTERED"
	KindCapacityBelowActive   Kind = "CAPACITY_BELOW_ACTIVE"
	KindInvalidStudentNum     Kind = "INVALID_STUDENT_NUM"
	KindImportInvalid         Kind = "IMPORT_INVALID"
	KindInvalidCredentials    Kind = "INVALID_CREDENTIALS"
	KindUnauthorized          Kind = "UNAUTHORIZED"
	KindForbidden             Kind = "FORBIDDEN"
	KindRateLimited           Kind = "RATE_LIMITED"
	KindPayloadTooLarge       Kind = "PAYLOAD_TOO_LARGE"
	KindInternal              Kind = "INTERNAL_ERROR"
)

// AppError 带错误码的业务错误
type AppError struct {
	Kind    Kind
	Message string
}

// New 创建业务错误
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf 提取错误链上的业务错误码；非业务错误返回 KindInternal
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
