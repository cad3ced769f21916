package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrDealNotFound       = errors.New("deal not found")
	ErrDealExpired        = errors.New("deal expired")
	ErrDealNotOpen        = errors.New("deal already accepted")
	ErrDealNotActive      = errors.New("deal not active")
	ErrApprovalRequired   = errors.New("deal requires sponsor approval")
	ErrValidation         = errors.New("validation failed")
	ErrMissingFields      = errors.New("missing required fields")
	ErrEncoding           = errors.New("encoding failed")
	ErrTransactionFailed  = errors.New("transaction failed")
)

// FieldErrors mapea nombre de campo → mensaje para el usuario.
type FieldErrors map[string]string

// ValidationError agrupa los errores por campo de un formulario.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Operation identifica la llamada al contrato que originó un error.
type Operation string

const (
	OpSubmitBid         Operation = "submitBid"
	OpCreateDeal        Operation = "createSponsorshipDeal"
	OpAcceptDeal        Operation = "acceptDeal"
	OpReportPerformance Operation = "reportPerformance"
	OpGetDealInfo       Operation = "getDealInfo"
)

// OpError envuelve un fallo de cifrado o de transacción con la operación
// que lo produjo. Kind es ErrEncoding o ErrTransactionFailed.
type OpError struct {
	Op   Operation
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error { return []error{e.Kind, e.Err} }

// EncodingError construye un OpError de cifrado.
func EncodingError(op Operation, err error) error {
	return &OpError{Op: op, Kind: ErrEncoding, Err: err}
}

// TransactionError construye un OpError de transacción rechazada.
func TransactionError(op Operation, err error) error {
	return &OpError{Op: op, Kind: ErrTransactionFailed, Err: err}
}

// UserMessage traduce un error del marketplace al mensaje que ve el usuario.
// Cada causa produce un texto distinto.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var opErr *OpError
	switch {
	case errors.Is(err, ErrWalletNotConnected):
		return "Please connect your wallet first"
	case errors.Is(err, ErrDealNotFound):
		return "Deal not found"
	case errors.Is(err, ErrDealExpired):
		return "This deal has expired"
	case errors.Is(err, ErrDealNotOpen):
		return "This deal has already been accepted"
	case errors.Is(err, ErrDealNotActive):
		return "Performance can only be reported on an active deal"
	case errors.Is(err, ErrApprovalRequired):
		return "This deal requires sponsor approval before accepting bids"
	case errors.Is(err, ErrValidation):
		return "Please fix the highlighted fields"
	case errors.As(err, &opErr):
		return opMessage(opErr)
	}
	var missing *MissingFieldsError
	if errors.As(err, &missing) {
		return missing.Msg
	}
	return "Unexpected error: " + err.Error()
}

func opMessage(e *OpError) string {
	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}
	if errors.Is(e.Kind, ErrEncoding) {
		switch e.Op {
		case OpSubmitBid:
			return "Error encrypting bid data"
		case OpAcceptDeal:
			return "Error accepting deal"
		case OpReportPerformance:
			return "Error reporting performance"
		default:
			return "Error encrypting data"
		}
	}
	switch e.Op {
	case OpSubmitBid:
		return "Failed to submit bid: " + cause
	case OpCreateDeal:
		return "Error creating deal: " + cause
	case OpAcceptDeal:
		return "Error accepting deal: " + cause
	case OpReportPerformance:
		return "Error reporting performance: " + cause
	default:
		return "Error reading deal: " + cause
	}
}

// MissingFieldsError indica que faltan campos obligatorios; Msg es el texto de la UI.
type MissingFieldsError struct {
	Msg string
}

func (e *MissingFieldsError) Error() string { return e.Msg }

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }
