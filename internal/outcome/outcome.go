package outcome

import (
	"encoding/json"
	"net/http"
)

// Outcome is the terminal value of one pipeline run: either a success
// carrying the decoded QR text, or a failure carrying a Kind.
//
// The zero value is a failure of kind Exception. Fields are unexported so an
// Outcome cannot change after construction.
type Outcome struct {
	success bool
	text    string
	kind    Kind
}

// Success returns a successful outcome holding the decoded text.
func Success(text string) Outcome {
	return Outcome{success: true, text: text}
}

// Failure returns a failed outcome of the given kind.
func Failure(kind Kind) Outcome {
	return Outcome{kind: kind}
}

// IsSuccess reports whether the outcome is a success.
func (o Outcome) IsSuccess() bool {
	return o.success
}

// Text returns the decoded text. It is empty for failures.
func (o Outcome) Text() string {
	return o.text
}

// Kind returns the failure kind. It is meaningless for successes.
func (o Outcome) Kind() Kind {
	return o.kind
}

// String returns "Success" or the failure kind name.
func (o Outcome) String() string {
	if o.success {
		return "Success"
	}
	return o.kind.String()
}

// outcomeJSON is the persisted shape of an Outcome.
type outcomeJSON struct {
	Success bool   `json:"success"`
	Text    string `json:"text,omitempty"`
	Code    *int   `json:"code,omitempty"`
}

// MarshalJSON encodes the outcome for reports and the history store.
func (o Outcome) MarshalJSON() ([]byte, error) {
	v := outcomeJSON{Success: o.success, Text: o.text}
	if !o.success {
		code := o.kind.Code()
		v.Code = &code
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes an outcome written by MarshalJSON.
// An unknown failure code decodes as Exception.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var v outcomeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Success {
		*o = Success(v.Text)
		return nil
	}
	kind := KindException
	if v.Code != nil {
		kind, _ = KindFromCode(*v.Code)
	}
	*o = Failure(kind)
	return nil
}

// QRData is the success payload.
type QRData struct {
	Data string `json:"data"`
}

// Response is the payload returned to API callers.
//
// It serializes to {"success":true,"qr":{"data":"..."}} on success and to
// {"success":false,"error":<code>} on failure. Error is a pointer so that
// code 0 (Exception) is still emitted.
type Response struct {
	Success bool    `json:"success"`
	QR      *QRData `json:"qr,omitempty"`
	Error   *int    `json:"error,omitempty"`
}

// Map converts an outcome into its response payload.
func Map(o Outcome) Response {
	if o.success {
		return Response{
			Success: true,
			QR:      &QRData{Data: o.text},
		}
	}
	code := o.kind.Code()
	return Response{
		Success: false,
		Error:   &code,
	}
}

// HTTPStatus returns the transport status code for an outcome:
// 200 for success, 500 for Exception, 400 for every other failure.
func HTTPStatus(o Outcome) int {
	if o.success {
		return http.StatusOK
	}
	switch o.kind {
	case KindUnavailable, KindUnsupportedFormat, KindSizeExceeded, KindParseError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
