package openfan

// StateOK is the success marker OpenFan firmware reports in its JSON
// envelopes. Any other value means the device itself considers the
// operation failed, even though the HTTP exchange succeeded.
const StateOK = "ok"

// Status is a point-in-time snapshot returned by the status endpoint.
type Status struct {
	// State is the device-reported operational status. A Status is only
	// valid when State == StateOK; the client turns anything else into
	// an APIError before the value reaches callers.
	State string `json:"status"`

	// RPM is the current measured rotation rate.
	RPM int `json:"rpm"`

	// PWMPercent is the current commanded duty cycle, 0-100.
	PWMPercent int `json:"pwm_percent"`
}

// ControlResponse is the generic envelope returned by command endpoints
// such as set-speed.
type ControlResponse struct {
	State string `json:"status"`

	// Message is an optional human-readable explanation, present chiefly
	// on failure.
	Message string `json:"message"`
}
