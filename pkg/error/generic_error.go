package error

// GenericError is an error that knows its API code and HTTP status.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
