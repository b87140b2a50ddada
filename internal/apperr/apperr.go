package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind - класс ошибки, по нему выбирается HTTP статус
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindForbidden      Kind = "forbidden"
	KindConflict       Kind = "conflict"
	KindPartialFailure Kind = "partial_failure"
)

// Стабильные коды, на которые может опираться UI
const (
	CodeInvalidRequest      = "invalid_request"
	CodeEmptyContent        = "empty_content"
	CodeInvalidDecision     = "invalid_decision"
	CodeSelfConnection      = "self_connection"
	CodeDuplicateConnection = "duplicate_connection"
	CodeAlreadyResolved     = "already_resolved"
	CodeNotAccepted         = "not_accepted"
	CodeNotRecipient        = "not_recipient"
	CodeNotParticipant      = "not_participant"
	CodeNotRoomMember       = "not_room_member"
	CodeInvalidAssignee     = "invalid_assignee"
	CodeConnectionNotFound  = "connection_not_found"
	CodeThreadNotFound      = "thread_not_found"
	CodeItemNotFound        = "checklist_item_not_found"
	CodeEventNotFound       = "event_not_found"
	CodeUserNotFound        = "user_not_found"
	CodeThreadCreateFailed  = "thread_create_failed"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает по Kind и Code, чтобы работал errors.Is с сентинелами пакета
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Code == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Status возвращает HTTP статус для класса ошибки
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error { return New(KindValidation, code, message) }
func NotFound(code, message string) *Error   { return New(KindNotFound, code, message) }
func Forbidden(code, message string) *Error  { return New(KindForbidden, code, message) }
func Conflict(code, message string) *Error   { return New(KindConflict, code, message) }

// PartialFailure - часть операции уже применена, а продолжение упало
func PartialFailure(code, message string, err error) *Error {
	return &Error{Kind: KindPartialFailure, Code: code, Message: message, Err: err}
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrPartial    = &Error{Kind: KindPartialFailure}

	ErrEmptyContent        = Validation(CodeEmptyContent, "content must not be empty")
	ErrInvalidDecision     = Validation(CodeInvalidDecision, "decision must be accept or decline")
	ErrSelfConnection      = Validation(CodeSelfConnection, "cannot connect with yourself")
	ErrDuplicateConnection = Conflict(CodeDuplicateConnection, "connection already requested")
	ErrAlreadyResolved     = Conflict(CodeAlreadyResolved, "connection already resolved")
	ErrNotAccepted         = Conflict(CodeNotAccepted, "connection is not accepted")
	ErrNotRecipient        = Forbidden(CodeNotRecipient, "only the recipient can respond")
	ErrNotParticipant      = Forbidden(CodeNotParticipant, "you are not a participant of this thread")
	ErrNotRoomMember       = Forbidden(CodeNotRoomMember, "you are not a member of this room")
	ErrInvalidAssignee     = Validation(CodeInvalidAssignee, "assignee must be a thread participant")
	ErrConnectionNotFound  = NotFound(CodeConnectionNotFound, "connection not found")
	ErrThreadNotFound      = NotFound(CodeThreadNotFound, "thread not found")
	ErrItemNotFound        = NotFound(CodeItemNotFound, "checklist item not found")
	ErrEventNotFound       = NotFound(CodeEventNotFound, "event not found")
	ErrUserNotFound        = NotFound(CodeUserNotFound, "user not found")
)

// As достает *Error из цепочки
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf возвращает класс ошибки или пустую строку для инфраструктурных ошибок
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}
