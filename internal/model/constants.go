package model

import "time"

const DefaultTimeout = 500 * time.Millisecond
const DefaultShutdownTimeout = 5 * time.Second
const DefaultReadHeaderTimeout = 2 * time.Second

const HeaderContentType = "Content-Type"
const HeaderRequestID = "X-Request-ID"

const ContentTypeJSON = "application/json"

type ContextKey string

const KeyContextLogger ContextKey = "logger"
const KeyContextRequestID ContextKey = "request_id"

const KeyLoggerError = "error"
