package relay

import "encoding/json"

// Status tags a delivery outcome. The distinction between
// StatusUnauthenticated (no token at all) and StatusSessionExpired
// (token rejected with 401) matters to callers: the first needs a
// login, the second a re-login, and neither is retried automatically.
type Status string

const (
	// StatusDelivered: the service accepted the payload; Body holds
	// the response.
	StatusDelivered Status = "delivered"

	// StatusUnauthenticated: no token in the credential store. The
	// request was never issued.
	StatusUnauthenticated Status = "unauthenticated"

	// StatusSessionExpired: the service answered 401. The token exists
	// but is no longer accepted.
	StatusSessionExpired Status = "session_expired"

	// StatusTransportFailure: timeout, connection error, non-2xx
	// status other than 401, or an unreadable response body.
	StatusTransportFailure Status = "transport_failure"

	// StatusSkipped: the snapshot was content-identical to the last
	// delivered one and was not sent.
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one delivery attempt.
type Outcome struct {
	Status Status          `json:"status"`
	Body   json.RawMessage `json:"body,omitempty"`
	Err    string          `json:"error,omitempty"`

	// retryable marks transport failures where the request may never
	// have reached the service, making a replay worthwhile. A non-2xx
	// answer is not retryable: the service saw the bytes and said no.
	retryable bool
}

// Delivered reports whether the payload reached the service.
func (o Outcome) Delivered() bool { return o.Status == StatusDelivered }

func delivered(body []byte) Outcome {
	return Outcome{Status: StatusDelivered, Body: body}
}

func transportFailure(msg string) Outcome {
	return Outcome{Status: StatusTransportFailure, Err: msg}
}
