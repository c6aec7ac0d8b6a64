package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevG10/AI-RetinoNet/config"
)

func TestEmailServiceRequiresCredentials(t *testing.T) {
	svc := NewEmailService(&config.Config{SMTPServer: "smtp.example.com", SMTPPort: 587})
	err := svc.SendReport("patient@example.com", []byte("%PDF-fake"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "credentials")
}

func TestEmailServiceRejectsEmptyReport(t *testing.T) {
	svc := NewEmailService(&config.Config{
		SenderEmail:    "clinic@example.com",
		SenderPassword: "secret",
		SMTPServer:     "smtp.example.com",
		SMTPPort:       587,
	})
	err := svc.SendReport("patient@example.com", nil)
	require.Error(t, err)
}

func TestBuildMessageContainsHeadersAndAttachment(t *testing.T) {
	svc := &smtpEmailService{
		sender:   "clinic@example.com",
		password: "secret",
		host:     "smtp.example.com",
		port:     587,
	}

	msg, err := svc.buildMessage("patient@example.com", []byte("%PDF-fake"))
	require.NoError(t, err)

	text := string(msg)
	require.Contains(t, text, "From: clinic@example.com")
	require.Contains(t, text, "To: patient@example.com")
	require.Contains(t, text, "Subject: RetinoNet Diagnostic Report")
	require.Contains(t, text, "multipart/mixed")
	require.Contains(t, text, `attachment; filename="RetinoNet_Report.pdf"`)
	require.Contains(t, text, "Always consult a medical professional")
}
