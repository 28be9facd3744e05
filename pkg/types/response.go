package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the wire shape every failed request returns.
type ErrorEnvelope struct {
	Error      bool                `json:"error"`
	StatusCode int                 `json:"status_code"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
}
