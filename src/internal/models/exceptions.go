package models

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrRedisGet        = errors.New("redis get error")
	ErrRedisSet        = errors.New("redis set error")
	ErrRedisDelete     = errors.New("redis delete error")
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session expired")
	ErrSessionInactive   = errors.New("session inactive")
	ErrSessionInvalid    = errors.New("session invalid")
	ErrSessionCreating   = errors.New("error creating session")
	ErrSessionUpdating   = errors.New("error updating session")
	ErrSessionDeleting   = errors.New("error deleting session")
	ErrSessionNoTimeline = errors.New("session has no usable timestamps")
)

var (
	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrDatabaseInsert     = errors.New("database insert error")
	ErrDatabaseDelete     = errors.New("database delete error")
	ErrScanAborted        = errors.New("session scan could not start")
)

var (
	ErrInvalidParams = errors.New("invalid request parameters")
	ErrUnauthorized  = errors.New("unauthorized")
)
