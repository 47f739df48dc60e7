package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 画面にそのまま出す文言
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgProfileNotFound    = "profile not found"
	MsgUnexpected         = "Ocurrió un error inesperado."
	MsgCheckoutFailed     = "Error procesando la compra."
	MsgCheckoutSucceeded  = "Compra realizada con éxito! El vendedor verificará tu pago."
	MsgRegistered         = "Registro exitoso! Ya puedes iniciar sesión."
	MsgProductCreated     = "Producto agregado!"
	MsgTitleRequired      = "Escribe el nombre del producto primero."
)

var (
	errUnauthorized = NewHTTPError(http.StatusUnauthorized, "unauthorized")
	errInternal     = NewHTTPError(http.StatusInternalServerError, MsgUnexpected)
)

func badRequest(msg string) error {
	return NewHTTPError(http.StatusBadRequest, msg)
}
