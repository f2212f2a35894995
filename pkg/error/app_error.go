package error

import "net/http"

type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

type BadRequestError string

func (err BadRequestError) Error() string {
	return string(err)
}

func (err BadRequestError) ErrCode() string {
	return "BAD_REQUEST"
}

func (err BadRequestError) StatusCode() int {
	return http.StatusBadRequest
}

type InternalServerError string

func (err InternalServerError) Error() string {
	return string(err)
}

func (err InternalServerError) ErrCode() string {
	return "INTERNAL_SERVER_ERROR"
}

func (err InternalServerError) StatusCode() int {
	return http.StatusInternalServerError
}
