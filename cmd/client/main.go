package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/DevG10/AI-RetinoNet/capture"
	"github.com/DevG10/AI-RetinoNet/client"
	"github.com/DevG10/AI-RetinoNet/config"
	"github.com/DevG10/AI-RetinoNet/models"
)

func main() {
	cmd := flag.String("cmd", "analyze", "Command: status|analyze|capture|report|email")
	file := flag.String("file", "", "Path to the retinal image (analyze/report/email)")
	out := flag.String("out", "RetinoNet_Report.pdf", "Output path for the PDF report")
	to := flag.String("to", "", "Recipient email address (email command)")
	device := flag.Int("device", 0, "Camera device ID (capture command)")
	serverFlag := flag.String("server", "", "Override server base URL (e.g. https://api.example.com)")
	noWait := flag.Bool("no-wait", false, "Skip the readiness check before submitting")
	verifyDomain := flag.Bool("verify-domain", false, "Also check the recipient domain has an MX record (email command)")
	flag.Parse()

	// The base URL comes from the shared config (RETINONET_SERVER env var or
	// its default); the flag wins when set.
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	serverBaseURL := cfg.ServerBaseURL
	if *serverFlag != "" {
		serverBaseURL = *serverFlag
	}

	api := client.NewClient(serverBaseURL, nil)
	analyzer := client.NewAnalyzer(api, client.DefaultOptions())
	ctx := context.Background()

	switch *cmd {
	case "status":
		err = showStatus(ctx, api)
	case "analyze":
		err = analyzeFile(ctx, api, analyzer, *file, *noWait)
	case "capture":
		err = captureAndAnalyze(ctx, api, analyzer, *device, *noWait)
	case "report":
		err = downloadReport(ctx, api, analyzer, *file, *out, *noWait)
	case "email":
		err = emailReport(ctx, api, analyzer, *file, *to, *noWait, *verifyDomain)
	default:
		err = fmt.Errorf("unknown command %q", *cmd)
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func showStatus(ctx context.Context, api *client.Client) error {
	ready, err := api.Status(ctx)
	if err != nil {
		return err
	}
	if ready {
		fmt.Println("Model is ready.")
	} else {
		fmt.Println("Model is still loading.")
	}
	return nil
}

// waitForReady polls /status with the default policy before a submit, so the
// CLI does not fire an analysis at a cold backend.
func waitForReady(ctx context.Context, api *client.Client) {
	probe := client.NewReadinessProbe(api, client.DefaultProbeConfig())

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	fmt.Println("Checking model status...")
	state := probe.Run(waitCtx)
	if state.Degraded {
		fmt.Println("Warning: model did not confirm readiness, proceeding anyway.")
	}
}

func analyzeFile(ctx context.Context, api *client.Client, analyzer *client.Analyzer, path string, noWait bool) error {
	result, err := runAnalysis(ctx, api, analyzer, path, noWait)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func captureAndAnalyze(ctx context.Context, api *client.Client, analyzer *client.Analyzer, device int, noWait bool) error {
	cam, err := capture.OpenWebcam(device)
	if err != nil {
		return err
	}
	defer cam.Close()

	frame, err := cam.Grab()
	if err != nil {
		return err
	}
	fmt.Printf("Captured frame (%d bytes).\n", len(frame))

	if !noWait {
		waitForReady(ctx, api)
	}

	session := client.NewCaptureSession(analyzer)
	if err := session.Capture(frame); err != nil {
		return err
	}
	result, err := session.Submit(ctx)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func downloadReport(ctx context.Context, api *client.Client, analyzer *client.Analyzer, path, out string, noWait bool) error {
	result, err := runAnalysis(ctx, api, analyzer, path, noWait)
	if err != nil {
		return err
	}
	printResult(result)

	pdf, err := api.GenerateReport(ctx, models.GenerateReportRequest{
		Upload:      result.Upload,
		Predictions: result.Predictions,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("Report saved to %s (%d bytes).\n", out, len(pdf))
	return nil
}

func emailReport(ctx context.Context, api *client.Client, analyzer *client.Analyzer, path, to string, noWait, verifyDomain bool) error {
	if verifyDomain {
		if err := client.ValidateEmailDomain(to); err != nil {
			return err
		}
	} else if err := client.ValidateEmail(to); err != nil {
		return err
	}

	result, err := runAnalysis(ctx, api, analyzer, path, noWait)
	if err != nil {
		return err
	}
	printResult(result)

	err = api.SendReport(ctx, models.SendReportRequest{
		Email:       to,
		Upload:      result.Upload,
		Predictions: result.Predictions,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Report sent to %s.\n", to)
	return nil
}

// runAnalysis loads the file, waits for readiness unless told not to, and runs
// the analyze contract.
func runAnalysis(ctx context.Context, api *client.Client, analyzer *client.Analyzer, path string, noWait bool) (*models.AnalysisResult, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	upload, err := loadUpload(path)
	if err != nil {
		return nil, err
	}

	if !noWait {
		waitForReady(ctx, api)
	}

	fmt.Printf("Analyzing %s (%d bytes)...\n", upload.Filename, len(upload.Data))
	return analyzer.Analyze(ctx, upload)
}

// loadUpload reads the image and derives its content type from the sniffed
// bytes, falling back to the file extension.
func loadUpload(path string) (models.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Upload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		// Sniffing is unreliable for some formats; trust a known extension.
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		}
	}

	return models.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// printResult renders the prediction table with severity bands, clearly
// marking simulated output.
func printResult(result *models.AnalysisResult) {
	if result.Simulated() {
		fmt.Println()
		fmt.Println("*** SIMULATED RESULT: the analysis service could not be reached. ***")
		fmt.Println("*** These numbers are placeholders, not a diagnosis.             ***")
	}

	classes := make([]string, 0, len(result.Predictions))
	for class := range result.Predictions {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	fmt.Println()
	for _, class := range classes {
		pctText := result.Predictions[class]
		pct, err := models.ParsePercent(pctText)
		if err != nil {
			fmt.Printf("  %-28s %8s\n", class, pctText)
			continue
		}
		band := models.SeverityFor(pct)
		fmt.Printf("  %-28s %8s  [%s]\n", class, pctText, band.Label())
	}
	fmt.Println()
	fmt.Println("Recommendation:", models.RecommendationFor(result.Predictions))
}
