package logging

const (
	LogFieldRequestMethod   = "request-method"
	LogFieldRequestID       = "request-id"
	LogFieldURLPath         = "url-path"
	LogFieldLogger          = "logger"
	LogFieldTraceID         = "trace-id"
	LogFieldSpanID          = "span-id"
	LogFieldExtractorSource = "extractor-source"
	LogFieldRejectReason    = "reject-reason"
	LogFieldViolationCount  = "violation-count"
	LogFieldStackTrace      = "stack-trace"
)
