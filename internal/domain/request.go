package domain

import "fmt"

// RequestType enumerates what a staff member asked for on a given day.
type RequestType string

const (
	RequestPaidLeave    RequestType = "PaidLeave"
	RequestOff          RequestType = "RequestedOff"
	RequestEarly        RequestType = "Early"
	RequestMid          RequestType = "Mid"
	RequestLate         RequestType = "Late"
	RequestFree         RequestType = "Free"
	RequestCustomWindow RequestType = "CustomWindow"
)

// ShiftRequest is one staff member's wish for one day. Start and End are
// meaningful only for CustomWindow requests.
type ShiftRequest struct {
	Type  RequestType
	Start ClockTime
	End   ClockTime
}

// Validate checks internal consistency of a single request.
func (r ShiftRequest) Validate() error {
	switch r.Type {
	case RequestPaidLeave, RequestOff, RequestEarly, RequestMid, RequestLate, RequestFree:
		return nil
	case RequestCustomWindow:
		if r.End <= r.Start {
			return fmt.Errorf("custom window %s-%s is empty", r.Start, r.End)
		}
		return nil
	}
	return fmt.Errorf("unknown request type %q", r.Type)
}

// ForcedShift returns the working band a request pins, if any.
func (r ShiftRequest) ForcedShift() (ShiftType, bool) {
	switch r.Type {
	case RequestEarly:
		return ShiftEarly, true
	case RequestMid:
		return ShiftMid, true
	case RequestLate:
		return ShiftLate, true
	}
	return "", false
}

// WindowMinutes returns the literal requested window length.
func (r ShiftRequest) WindowMinutes() int {
	return int(r.End) - int(r.Start)
}

// RequestSet maps day number (1-based) to the request submitted for it,
// for a single staff member. Absence of a day means no request.
type RequestSet map[int]ShiftRequest

// MonthRequests maps staff id to that staff's request set for the month.
type MonthRequests map[string]RequestSet

// For returns the request a staff member submitted for a day.
func (m MonthRequests) For(staffID string, day int) (ShiftRequest, bool) {
	set, ok := m[staffID]
	if !ok {
		return ShiftRequest{}, false
	}
	req, ok := set[day]
	return req, ok
}
