package api

// routeHandlers contains the handlers for each route group
type routeHandlers struct {
	blogHandler blogHandler
}

// ErrorResponse is the error body shape every endpoint shares.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
	Field  string `json:"field,omitempty"`
}
