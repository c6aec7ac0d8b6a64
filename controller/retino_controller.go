package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DevG10/AI-RetinoNet/client"
	"github.com/DevG10/AI-RetinoNet/models"
	"github.com/DevG10/AI-RetinoNet/services"
)

// maxUploadSize matches the client-side limit so oversize files are rejected
// at both ends.
const maxUploadSize = 10 << 20

// RetinoController handles the HTTP requests of the RetinoNet API. It depends
// on the service layer for the actual work.
type RetinoController struct {
	model      services.ModelService
	prediction services.PredictionService
	report     services.ReportService
	email      services.EmailService
}

// NewRetinoController is the constructor called from main to inject the
// service dependencies.
func NewRetinoController(model services.ModelService, prediction services.PredictionService, report services.ReportService, email services.EmailService) *RetinoController {
	return &RetinoController{
		model:      model,
		prediction: prediction,
		report:     report,
		email:      email,
	}
}

// RegisterRoutes mounts the API on the router. Callers hit the POST endpoints
// both with and without the trailing slash, so every form is registered.
func RegisterRoutes(router *gin.Engine, c *RetinoController) {
	router.GET("/", c.Home)
	router.GET("/status", c.Status)

	posts := map[string]gin.HandlerFunc{
		"/predict":         c.Predict,
		"/generate_report": c.GenerateReport,
		"/send_report":     c.SendReport,
	}
	for path, handler := range posts {
		router.POST(path, handler)
		router.POST(path+"/", handler)
	}
}

// Home is the handler for GET /.
func (c *RetinoController) Home(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, models.MessageResponse{Message: "RetinoNet API is running"})
}

// Status is the handler for GET /status. It reports whether the model is
// loaded; clients poll this before allowing submits.
func (c *RetinoController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, models.StatusResponse{Status: c.model.IsLoaded()})
}

// Predict is the handler for POST /predict/. Regular uploads get a prediction
// map; frames named by the live-capture convention get the processed JPEG back.
func (c *RetinoController) Predict(ctx *gin.Context) {
	upload, err := readUpload(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.Contains(upload.Filename, "live_captured_image") {
		processed, err := c.prediction.ProcessLiveCapture(ctx.Request.Context(), upload)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process captured frame"})
			return
		}
		ctx.Data(http.StatusOK, "image/jpeg", processed)
		return
	}

	preds, err := c.prediction.AnalyzeImage(ctx.Request.Context(), upload)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze image"})
		return
	}
	ctx.JSON(http.StatusOK, models.PredictResponse{Predictions: preds})
}

// GenerateReport is the handler for POST /generate_report/. It responds with
// the PDF as an attachment.
func (c *RetinoController) GenerateReport(ctx *gin.Context) {
	req, err := readReportRequest(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pdf, err := c.report.GenerateReport(models.GenerateReportRequest{
		Upload:      req.Upload,
		Predictions: req.Predictions,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename=RetinoNet_Report.pdf")
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}

// SendReport is the handler for POST /send_report/: generate the PDF and mail
// it to the submitted address.
func (c *RetinoController) SendReport(ctx *gin.Context) {
	email := ctx.PostForm("email")
	if err := client.ValidateEmail(email); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	req, err := readReportRequest(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pdf, err := c.report.GenerateReport(models.GenerateReportRequest{
		Upload:      req.Upload,
		Predictions: req.Predictions,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	if err := c.email.SendReport(email, pdf); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}
	ctx.JSON(http.StatusOK, models.MessageResponse{Message: "Report sent successfully"})
}

// readUpload pulls the "file" part out of the multipart form.
func readUpload(ctx *gin.Context) (models.Upload, error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return models.Upload{}, fmt.Errorf("no file provided, use 'file' as the form field name")
	}
	if fileHeader.Size > maxUploadSize {
		return models.Upload{}, fmt.Errorf("file exceeds the 10MB limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.Upload{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.Upload{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return models.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// readReportRequest pulls the file plus the serialized predictions form field.
func readReportRequest(ctx *gin.Context) (models.GenerateReportRequest, error) {
	upload, err := readUpload(ctx)
	if err != nil {
		return models.GenerateReportRequest{}, err
	}

	predsField := ctx.PostForm("predictions")
	if predsField == "" {
		return models.GenerateReportRequest{}, fmt.Errorf("no predictions provided")
	}

	var preds models.PredictionSet
	if err := json.Unmarshal([]byte(predsField), &preds); err != nil {
		return models.GenerateReportRequest{}, fmt.Errorf("invalid predictions payload: %w", err)
	}

	return models.GenerateReportRequest{Upload: upload, Predictions: preds}, nil
}
