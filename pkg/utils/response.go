package utils

import (
	"errors"
	"fmt"

	pkgError "github.com/AzielCF/az-settings/pkg/error"
)

type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with err so middleware.Recovery can render it. Errors
// that are not a GenericError become an InternalServerError.
func PanicIfNeeded(err any, message ...string) {
	if err == nil {
		return
	}
	e, ok := err.(error)
	if !ok {
		panic(pkgError.InternalServerError(fmt.Sprint(err)))
	}
	var generic pkgError.GenericError
	if errors.As(e, &generic) {
		panic(generic)
	}
	if len(message) > 0 {
		panic(pkgError.InternalServerError(fmt.Sprintf("%s: %v", message[0], e)))
	}
	panic(pkgError.InternalServerError(e.Error()))
}
