package models

// GenerateReportRequest mirrors the multipart form of POST /generate_report/:
// the analyzed file plus its serialized predictions.
type GenerateReportRequest struct {
	Upload      Upload
	Predictions PredictionSet
}

// SendReportRequest mirrors the multipart form of POST /send_report/, adding
// the recipient address.
type SendReportRequest struct {
	Email       string
	Upload      Upload
	Predictions PredictionSet
}
