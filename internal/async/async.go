// Package async models the outcome of a fallible asynchronous operation
// without losing whether it is still in flight.
package async

import "errors"

// ErrOperationFailed is reported when a failure carries no underlying cause.
var ErrOperationFailed = errors.New("operation failed")

// Kind tags the active variant of an Async value.
type Kind int

const (
	KindUninitialized Kind = iota
	KindLoading
	KindSuccess
	KindFail
)

func (k Kind) String() string {
	switch k {
	case KindUninitialized:
		return "uninitialized"
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Async is a tagged union over Uninitialized, Loading, Success and Fail.
// Exactly one variant is active; the zero value is Uninitialized.
type Async[T any] struct {
	kind          Kind
	value         T
	isLoadingMore bool
	err           error
}

// Uninitialized returns the initial variant.
func Uninitialized[T any]() Async[T] {
	return Async[T]{kind: KindUninitialized}
}

// Loading returns the in-flight variant.
func Loading[T any]() Async[T] {
	return Async[T]{kind: KindLoading}
}

// Success returns a completed variant. isLoadingMore marks that another
// fetch is still outstanding while this value is shown.
func Success[T any](value T, isLoadingMore bool) Async[T] {
	return Async[T]{kind: KindSuccess, value: value, isLoadingMore: isLoadingMore}
}

// Fail returns a failed variant. A nil err is replaced by ErrOperationFailed.
func Fail[T any](err error) Async[T] {
	if err == nil {
		err = ErrOperationFailed
	}
	return Async[T]{kind: KindFail, err: err}
}

// FromResult converts a Go (value, error) pair.
func FromResult[T any](value T, err error) Async[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Success(value, false)
}

// Kind reports the active variant.
func (a Async[T]) Kind() Kind {
	return a.kind
}

// IsLoading is true only for the Loading variant.
func (a Async[T]) IsLoading() bool {
	return a.kind == KindLoading
}

// IsLoadingMore is only meaningful for Success.
func (a Async[T]) IsLoadingMore() bool {
	return a.kind == KindSuccess && a.isLoadingMore
}

// Value returns the success value and whether the variant is Success.
func (a Async[T]) Value() (T, bool) {
	return a.value, a.kind == KindSuccess
}

// Err returns the failure cause, or nil unless the variant is Fail.
func (a Async[T]) Err() error {
	if a.kind != KindFail {
		return nil
	}
	return a.err
}

func (a Async[T]) String() string {
	return a.kind.String()
}
