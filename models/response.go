package models

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status bool `json:"status"`
}

// PredictResponse is the JSON body of POST /predict/ for regular uploads.
type PredictResponse struct {
	Predictions PredictionSet `json:"predictions"`
}

// MessageResponse is the generic acknowledgement body (send_report, home).
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
