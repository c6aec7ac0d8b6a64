package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/DevG10/AI-RetinoNet/config"
)

const emailBody = `Dear Patient,

Please find your attached RetinoNet diagnostic report.

IMPORTANT: Always consult a medical professional for a definitive diagnosis.

Regards,
RetinoNet Team
`

// EmailService delivers the diagnostic report as a PDF attachment.
type EmailService interface {
	SendReport(to string, pdf []byte) error
}

type smtpEmailService struct {
	sender   string
	password string
	host     string
	port     int
}

// NewEmailService wires the SMTP settings from config.
func NewEmailService(cfg *config.Config) EmailService {
	return &smtpEmailService{
		sender:   cfg.SenderEmail,
		password: cfg.SenderPassword,
		host:     cfg.SMTPServer,
		port:     cfg.SMTPPort,
	}
}

// SendReport sends one email with the report attached. A single attempt, no
// retry; the caller surfaces the failure.
func (s *smtpEmailService) SendReport(to string, pdf []byte) error {
	if s.sender == "" || s.password == "" {
		return fmt.Errorf("email sender credentials are not configured")
	}
	if len(pdf) == 0 {
		return fmt.Errorf("report pdf is empty, refusing to send")
	}

	msg, err := s.buildMessage(to, pdf)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.sender, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.sender, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	log.Printf("EMAIL: report sent to %s", to)
	return nil
}

// buildMessage assembles the MIME multipart message: plain-text body plus the
// PDF attachment, base64 encoded.
func (s *smtpEmailService) buildMessage(to string, pdf []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", s.sender)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: RetinoNet Diagnostic Report\r\n")
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	textHeader := make(textproto.MIMEHeader)
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(emailBody)); err != nil {
		return nil, fmt.Errorf("failed to write email body: %w", err)
	}

	pdfHeader := make(textproto.MIMEHeader)
	pdfHeader.Set("Content-Type", "application/pdf")
	pdfHeader.Set("Content-Transfer-Encoding", "base64")
	pdfHeader.Set("Content-Disposition", `attachment; filename="RetinoNet_Report.pdf"`)
	pdfPart, err := writer.CreatePart(pdfHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment part: %w", err)
	}

	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(pdf)))
	base64.StdEncoding.Encode(encoded, pdf)
	if _, err := pdfPart.Write(encoded); err != nil {
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}
	return buf.Bytes(), nil
}
