package types

import (
	"errors"
	"fmt"
)

// ErrorType represents the failure classes of note generation and capture
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeCapability ErrorType = "capability"
	ErrorTypeCredential ErrorType = "credential"
	ErrorTypeBusy       ErrorType = "busy"
)

// Error codes
const (
	ErrCodeEmptyTranscript    = "EMPTY_TRANSCRIPT"
	ErrCodeProviderFailed     = "PROVIDER_FAILED"
	ErrCodeMalformedResponse  = "MALFORMED_RESPONSE"
	ErrCodeSpeechUnsupported  = "SPEECH_UNSUPPORTED"
	ErrCodeSpeechFailed       = "SPEECH_FAILED"
	ErrCodeMissingCredential  = "MISSING_CREDENTIAL"
	ErrCodeGenerationInFlight = "GENERATION_IN_FLIGHT"
)

// User-facing messages, one per class. Causes never reach the user.
const (
	MsgEmptyTranscript   = "Please enter a transcript or record a conversation."
	MsgNetworkFailure    = "Failed to generate SOAP note. Please check your connection and try again."
	MsgParseFailure      = "Failed to parse the response from the AI model."
	MsgSpeechUnsupported = "Speech recognition is not supported in this environment."
	MsgMissingCredential = "No model credential or backend URL is configured."
	MsgBusy              = "A note is already being generated. Please wait."
	MsgUnexpected        = "An unexpected error occurred."
)

// GenerationError is a classified failure. Message is safe to show to the
// user; Cause carries diagnostic detail and is only logged.
type GenerationError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is matches any GenerationError of the same type
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Code == "" || t.Code == e.Code)
}

func NewInputError() *GenerationError {
	return &GenerationError{Type: ErrorTypeInput, Code: ErrCodeEmptyTranscript, Message: MsgEmptyTranscript}
}

func NewNetworkError(cause error) *GenerationError {
	return &GenerationError{Type: ErrorTypeNetwork, Code: ErrCodeProviderFailed, Message: MsgNetworkFailure, Cause: cause}
}

func NewParseError(cause error) *GenerationError {
	return &GenerationError{Type: ErrorTypeParse, Code: ErrCodeMalformedResponse, Message: MsgParseFailure, Cause: cause}
}

func NewCapabilityError() *GenerationError {
	return &GenerationError{Type: ErrorTypeCapability, Code: ErrCodeSpeechUnsupported, Message: MsgSpeechUnsupported}
}

// NewSpeechError reports a recognizer failure with the engine message shown
// to the user.
func NewSpeechError(cause error) *GenerationError {
	msg := "Speech recognition error"
	if cause != nil {
		msg = fmt.Sprintf("Speech recognition error: %v", cause)
	}
	return &GenerationError{Type: ErrorTypeCapability, Code: ErrCodeSpeechFailed, Message: msg, Cause: cause}
}

func NewCredentialError() *GenerationError {
	return &GenerationError{Type: ErrorTypeCredential, Code: ErrCodeMissingCredential, Message: MsgMissingCredential}
}

func NewBusyError() *GenerationError {
	return &GenerationError{Type: ErrorTypeBusy, Code: ErrCodeGenerationInFlight, Message: MsgBusy}
}

// Sentinels for errors.Is checks
var (
	ErrInput      = &GenerationError{Type: ErrorTypeInput}
	ErrNetwork    = &GenerationError{Type: ErrorTypeNetwork}
	ErrParse      = &GenerationError{Type: ErrorTypeParse}
	ErrCapability = &GenerationError{Type: ErrorTypeCapability}
	ErrCredential = &GenerationError{Type: ErrorTypeCredential}
	ErrBusy       = &GenerationError{Type: ErrorTypeBusy}
)

// TypeOf returns the class of err, or "" when err is not a GenerationError
func TypeOf(err error) ErrorType {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Type
	}
	return ""
}

// UserMessage returns the text shown to the user for err
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Message
	}
	return MsgUnexpected
}
