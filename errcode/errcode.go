package errcode

// Code is a stable, wire-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable). These appear verbatim in the "error"
// field of err replies, so renaming one is a protocol change.
const (
	OK            Code = "ok"
	Busy          Code = "busy"
	Unsupported   Code = "unsupported"
	UnknownCmd    Code = "unknown_cmd"
	BadJSON       Code = "bad_json"
	MissingArg    Code = "missing_arg"
	InvalidParams Code = "invalid_params"
	LineTooLong   Code = "line_too_long"

	EmptyPayload    Code = "empty_payload"
	PayloadTooLarge Code = "payload_too_large"
	BadEncoding     Code = "bad_encoding"
	ShortFrame      Code = "short_frame"
	CRCMismatch     Code = "crc_mismatch"

	UnknownPeripheral Code = "unknown_peripheral"
	RegistryFull      Code = "registry_full"
	AddrInUse         Code = "addr_in_use"
	NoBus             Code = "no_bus"
	UnknownChannel    Code = "unknown_channel"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
