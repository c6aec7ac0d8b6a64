package services

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/creator"

	"github.com/DevG10/AI-RetinoNet/models"
)

func init() {

	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY"))
	if err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc license key: %v. PDF generation will fail.\n", err)
	}
}

const (
	colorPrimary   = "#1E40AF"
	colorSubtle    = "#4B5563"
	colorConfident = "#10B981"
	colorUncertain = "#F59E0B"
	colorUnlikely  = "#EF4444"
)

// ReportService renders the diagnostic PDF for an analyzed image.
type ReportService interface {
	GenerateReport(req models.GenerateReportRequest) ([]byte, error)
}

type pdfReportService struct {
	logoPath string
}

// NewReportService creates the PDF renderer; logoPath may be empty, in which
// case the header falls back to text only.
func NewReportService(logoPath string) ReportService {
	return &pdfReportService{logoPath: logoPath}
}

// GenerateReport builds the report: clinic header, analysis metadata, the
// analyzed image, a findings table with per-class confidence, and the clinical
// recommendation for the top class.
func (s *pdfReportService) GenerateReport(req models.GenerateReportRequest) ([]byte, error) {
	log.Printf("REPORT: generating pdf report for %s", req.Upload.Filename)

	c := creator.New()
	c.SetPageMargins(50, 50, 50, 60)

	s.drawFooter(c)

	if err := s.drawHeader(c); err != nil {
		log.Printf("REPORT WARN: falling back to text header: %v", err)
	}

	title := c.NewParagraph("Diagnostic Report")
	title.SetFontSize(24)
	title.SetColor(creator.ColorRGBFromHex(colorPrimary))
	title.SetTextAlignment(creator.TextAlignmentCenter)
	title.SetMargins(0, 0, 15, 0)
	if err := c.Draw(title); err != nil {
		return nil, fmt.Errorf("failed to draw title: %w", err)
	}

	subtitle := c.NewParagraph("AI-Powered Retinal Analysis Report")
	subtitle.SetFontSize(12)
	subtitle.SetColor(creator.ColorRGBFromHex(colorSubtle))
	subtitle.SetTextAlignment(creator.TextAlignmentCenter)
	subtitle.SetMargins(0, 0, 0, 20)
	if err := c.Draw(subtitle); err != nil {
		return nil, fmt.Errorf("failed to draw subtitle: %w", err)
	}

	if err := s.drawMetadata(c); err != nil {
		return nil, err
	}

	if err := s.drawImage(c, req.Upload.Data); err != nil {
		return nil, err
	}

	if err := s.drawFindings(c, req.Predictions); err != nil {
		return nil, err
	}

	if err := s.drawRecommendation(c, req.Predictions); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to build pdf: %w", err)
	}
	log.Printf("REPORT: pdf report generated (%d bytes)", buf.Len())
	return buf.Bytes(), nil
}

// drawHeader lays out the logo next to the clinic contact block.
func (s *pdfReportService) drawHeader(c *creator.Creator) error {
	header := c.NewTable(2)
	if err := header.SetColumnWidths(0.3, 0.7); err != nil {
		return err
	}

	logoCell := header.NewCell()
	if s.logoPath != "" {
		logo, err := c.NewImageFromFile(s.logoPath)
		if err != nil {
			return fmt.Errorf("logo file not found: %w", err)
		}
		logo.ScaleToWidth(120)
		if err := logoCell.SetContent(logo); err != nil {
			return err
		}
	}

	contact := c.NewParagraph("RetinoNet Diagnostics\nPimpri Chinchwad, MH 411044\ncontact@retinonet.com\nretinonet.streamlit.app")
	contact.SetFontSize(10)
	contactCell := header.NewCell()
	if err := contactCell.SetContent(contact); err != nil {
		return err
	}

	return c.Draw(header)
}

// drawMetadata renders the analysis-date block.
func (s *pdfReportService) drawMetadata(c *creator.Creator) error {
	rows := [][2]string{
		{"Date of Analysis:", time.Now().Format("2006-01-02")},
		{"Analysis Type:", "Retinoblastoma Screening"},
		{"Report ID:", uuid.New().String()},
	}

	table := c.NewTable(2)
	if err := table.SetColumnWidths(0.3, 0.7); err != nil {
		return err
	}
	for _, row := range rows {
		for _, text := range row {
			p := c.NewParagraph(text)
			p.SetFontSize(10)
			cell := table.NewCell()
			cell.SetBackgroundColor(creator.ColorRGBFromHex("#F3F4F6"))
			cell.SetBorder(creator.CellBorderSideAll, creator.CellBorderStyleSingle, 0.5)
			if err := cell.SetContent(p); err != nil {
				return err
			}
		}
	}
	table.SetMargins(0, 0, 0, 25)
	if err := c.Draw(table); err != nil {
		return fmt.Errorf("failed to draw metadata table: %w", err)
	}
	return nil
}

// drawImage embeds the analyzed image, scaled down to fit.
func (s *pdfReportService) drawImage(c *creator.Creator, data []byte) error {
	heading := c.NewParagraph("Analyzed Image")
	heading.SetFontSize(14)
	heading.SetMargins(0, 0, 0, 10)
	if err := c.Draw(heading); err != nil {
		return fmt.Errorf("failed to draw image heading: %w", err)
	}

	img, err := c.NewImageFromData(data)
	if err != nil {
		return fmt.Errorf("failed to embed analyzed image: %w", err)
	}
	img.ScaleToWidth(300)
	img.SetMargins(100, 0, 0, 25)
	if err := c.Draw(img); err != nil {
		return fmt.Errorf("failed to draw analyzed image: %w", err)
	}
	return nil
}

// drawFindings renders the per-class confidence table, highest first, with the
// confidence colored by threshold.
func (s *pdfReportService) drawFindings(c *creator.Creator, preds models.PredictionSet) error {
	heading := c.NewParagraph("Diagnostic Findings")
	heading.SetFontSize(14)
	heading.SetMargins(0, 0, 0, 10)
	if err := c.Draw(heading); err != nil {
		return fmt.Errorf("failed to draw findings heading: %w", err)
	}

	type finding struct {
		class string
		pct   float64
		text  string
	}
	findings := make([]finding, 0, len(preds))
	for class, pctText := range preds {
		pct, err := models.ParsePercent(pctText)
		if err != nil {
			return err
		}
		findings = append(findings, finding{class: class, pct: pct, text: pctText})
	}
	sort.Slice(findings, func(i, j int) bool { return findings[i].pct > findings[j].pct })

	table := c.NewTable(2)
	if err := table.SetColumnWidths(0.75, 0.25); err != nil {
		return err
	}
	for _, f := range findings {
		name := c.NewParagraph(f.class)
		name.SetFontSize(11)
		nameCell := table.NewCell()
		nameCell.SetBorder(creator.CellBorderSideAll, creator.CellBorderStyleSingle, 0.5)
		if err := nameCell.SetContent(name); err != nil {
			return err
		}

		conf := c.NewParagraph(f.text)
		conf.SetFontSize(11)
		conf.SetColor(creator.ColorRGBFromHex(confidenceColor(f.pct)))
		confCell := table.NewCell()
		confCell.SetBorder(creator.CellBorderSideAll, creator.CellBorderStyleSingle, 0.5)
		if err := confCell.SetContent(conf); err != nil {
			return err
		}
	}
	table.SetMargins(0, 0, 0, 25)
	if err := c.Draw(table); err != nil {
		return fmt.Errorf("failed to draw findings table: %w", err)
	}
	return nil
}

// drawRecommendation renders the canned clinical note for the top class.
func (s *pdfReportService) drawRecommendation(c *creator.Creator, preds models.PredictionSet) error {
	heading := c.NewParagraph("Clinical Recommendation")
	heading.SetFontSize(14)
	heading.SetMargins(0, 0, 0, 10)
	if err := c.Draw(heading); err != nil {
		return fmt.Errorf("failed to draw recommendation heading: %w", err)
	}

	rec := c.NewParagraph(models.RecommendationFor(preds))
	rec.SetFontSize(12)
	rec.SetColor(creator.ColorRGBFromHex("#1F2937"))
	rec.SetMargins(10, 10, 0, 0)
	if err := c.Draw(rec); err != nil {
		return fmt.Errorf("failed to draw recommendation: %w", err)
	}
	return nil
}

// drawFooter registers the confidentiality footer on every page.
func (s *pdfReportService) drawFooter(c *creator.Creator) {
	c.DrawFooter(func(block *creator.Block, args creator.FooterFunctionArgs) {
		footer := c.NewParagraph(fmt.Sprintf("Page %d | Confidential Report - RetinoNet AI Diagnostics", args.PageNum))
		footer.SetFontSize(8)
		footer.SetColor(creator.ColorRGBFromHex("#6B7280"))
		footer.SetTextAlignment(creator.TextAlignmentCenter)
		if err := block.Draw(footer); err != nil {
			log.Printf("REPORT WARN: failed to draw footer: %v", err)
		}
	})
}

// confidenceColor maps a percentage (0-100) to the report's color scale.
func confidenceColor(pct float64) string {
	switch {
	case pct > 65:
		return colorConfident
	case pct > 30:
		return colorUncertain
	default:
		return colorUnlikely
	}
}
