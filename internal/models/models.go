package models

// Error Response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type OperationResponse struct {
	Name string `json:"name"`
	Help string `json:"help"`
	Kind string `json:"kind"`
}
