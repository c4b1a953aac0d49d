package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller does not own the resource
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrWorkerUnreachable indicates a worker could not be reached at all
	ErrWorkerUnreachable = errors.New("worker unreachable")

	// ErrWorkerRejected indicates a worker answered with a non-2xx status;
	// the wrapping error carries the worker's own message
	ErrWorkerRejected = errors.New("worker rejected request")

	// ErrWorkerProtocol indicates a worker response could not be decoded
	// or violated the protocol shape
	ErrWorkerProtocol = errors.New("worker protocol error")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the index's fixed dimension
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexNotReady indicates the vector index has not been primed since
	// process start
	ErrIndexNotReady = errors.New("vector index not ready")

	// ErrDocumentNodeMissing indicates a graph write that requires the
	// document node before it has been linked
	ErrDocumentNodeMissing = errors.New("document node missing")

	// ErrStoreUnavailable indicates a backing store could not be reached
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTaskNotFound indicates the queued task does not exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrLockNotHeld indicates a lock operation by a non-holder
	ErrLockNotHeld = errors.New("lock not held")
)
