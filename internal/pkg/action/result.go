// Package action carries the typed outcome of a domain operation to the HTTP layer.
package action

import (
	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindOK Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindError
)

// Codes the UI maps to a login or upgrade prompt.
const (
	CodeUnauthorized  = "unauthorized"
	CodeNotSubscriber = "notSubscriber"
)

// Result is either a successful value or a classified failure with a
// human readable message. Gated CMS reads may carry Data on failure.
type Result[T any] struct {
	Kind       Kind
	Data       T
	Message    string
	CustomCode string

	hasData bool
}

func OK[T any](data T) Result[T] {
	return Result[T]{Kind: KindOK, Data: data, hasData: true}
}

func BadRequest[T any](msg string) Result[T] {
	return Result[T]{Kind: KindBadRequest, Message: msg}
}

func Unauthorized[T any](msg string) Result[T] {
	return Result[T]{Kind: KindUnauthorized, Message: msg, CustomCode: CodeUnauthorized}
}

func Forbidden[T any](msg string) Result[T] {
	return Result[T]{Kind: KindForbidden, Message: msg}
}

func NotFound[T any](msg string) Result[T] {
	return Result[T]{Kind: KindNotFound, Message: msg}
}

func Conflict[T any](msg string) Result[T] {
	return Result[T]{Kind: KindConflict, Message: msg}
}

func Error[T any](msg string) Result[T] {
	return Result[T]{Kind: KindError, Message: msg}
}

// InternalMessage replaces driver and network errors in responses.
const InternalMessage = "Something went wrong. Please try again later."

// Internal is an Error whose cause stays in the server log.
func Internal[T any]() Result[T] {
	return Error[T](InternalMessage)
}

// WithCode attaches a custom code.
func (r Result[T]) WithCode(code string) Result[T] {
	r.CustomCode = code
	return r
}

// WithData attaches a payload to a failure.
func (r Result[T]) WithData(data T) Result[T] {
	r.Data = data
	r.hasData = true
	return r
}

func (r Result[T]) OK() bool {
	return r.Kind == KindOK
}

func (k Kind) Status() int {
	switch k {
	case KindOK:
		return fiber.StatusOK
	case KindBadRequest:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Envelope is the JSON body every API endpoint answers with.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	CustomCode string      `json:"customCode,omitempty"`
}

// Respond writes r as an Envelope with the matching HTTP status.
func Respond[T any](c *fiber.Ctx, r Result[T]) error {
	body := Envelope{
		Success:    r.OK(),
		Error:      r.Message,
		CustomCode: r.CustomCode,
	}
	if r.hasData {
		body.Data = r.Data
	}
	return c.Status(r.Kind.Status()).JSON(body)
}
