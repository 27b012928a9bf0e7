package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/erp-stock/internal/domain"
)

// opError error de negocio con mensaje para el usuario y sentinel de dominio para errors.Is.
type opError struct {
	kind error
	msg  string
}

func (e *opError) Error() string { return e.msg }
func (e *opError) Unwrap() error { return e.kind }

func fail(kind error, format string, args ...any) error {
	return &opError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// shortageError faltantes detectados al validar, un mensaje por insumo.
type shortageError struct {
	messages []string
}

func (e *shortageError) Error() string { return strings.Join(e.messages, "; ") }
func (e *shortageError) Unwrap() error { return domain.ErrInsufficientStock }

const genericFailure = "stock transaction failed, no changes were applied"

// classify traduce un error a (sentinel, mensajes para el usuario).
// Errores de almacenamiento no esperados se exponen con un mensaje genérico.
func classify(err error) (error, []string) {
	var short *shortageError
	if errors.As(err, &short) {
		return domain.ErrInsufficientStock, short.messages
	}
	var op *opError
	if errors.As(err, &op) {
		return op.kind, []string{op.msg}
	}
	for _, kind := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrInsufficientStock,
		domain.ErrAlreadyProcessed,
		domain.ErrConflict,
		domain.ErrCentralSector,
	} {
		if errors.Is(err, kind) {
			return kind, []string{kind.Error()}
		}
	}
	return domain.ErrTransactionFailure, []string{genericFailure}
}

// Message mensaje para el usuario de un error devuelto por este paquete.
func Message(err error) string {
	_, msgs := classify(err)
	return strings.Join(msgs, "; ")
}
