package analysis

import (
	"testing"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeAttachmentsEmpty(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeAttachments(&core.NormalizedEmail{})

	assert.Zero(t, result.Score)
	assert.Empty(t, result.Indicators)
}

func TestAnalyzeAttachmentsDangerousExtension(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeAttachments(&core.NormalizedEmail{Attachments: []core.Attachment{
		{Filename: "setup.exe", ContentType: "application/octet-stream", Size: 1024},
	}})

	assert.InDelta(t, 0.8, result.Score, 0.001)
	assert.Contains(t, result.Indicators, "dangerous_file_extension")
}

func TestAnalyzeAttachmentsMacroExtension(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeAttachments(&core.NormalizedEmail{Attachments: []core.Attachment{
		{Filename: "report.docm", ContentType: "application/vnd.ms-word.document.macroEnabled.12"},
	}})

	assert.InDelta(t, 0.3, result.Score, 0.001)
	assert.Contains(t, result.Indicators, "suspicious_file_extension")
	assert.NotContains(t, result.Indicators, "dangerous_file_extension")
}

func TestAnalyzeAttachmentsDisguisedExecutable(t *testing.T) {
	a := newTestAnalyzer()

	// The classic invoice.pdf.exe lure: dangerous extension, double
	// extension and lure filename all stack and saturate.
	result := a.analyzeAttachments(&core.NormalizedEmail{Attachments: []core.Attachment{
		{Filename: "invoice.pdf.exe", ContentType: "application/octet-stream"},
	}})

	assert.Equal(t, 1.0, result.Score)
	assert.Contains(t, result.Indicators, "dangerous_file_extension")
	assert.Contains(t, result.Indicators, "double_extension")
	assert.Contains(t, result.Indicators, "suspicious_filename")
}

func TestAnalyzeAttachmentsContentTypeMismatch(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeAttachments(&core.NormalizedEmail{Attachments: []core.Attachment{
		{Filename: "doc.pdf", ContentType: "application/x-msdownload"},
	}})

	// Macro-capable extension (0.3) plus the mismatch (0.4).
	assert.InDelta(t, 0.7, result.Score, 0.001)
	assert.Contains(t, result.Indicators, "content_type_mismatch")
}

func TestAnalyzeAttachmentsGenuinePDF(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeAttachments(&core.NormalizedEmail{Attachments: []core.Attachment{
		{Filename: "doc.pdf", ContentType: "application/pdf"},
	}})

	assert.InDelta(t, 0.3, result.Score, 0.001)
	assert.NotContains(t, result.Indicators, "content_type_mismatch")
}

func TestAnalyzeAttachmentsHarmless(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeAttachments(&core.NormalizedEmail{Attachments: []core.Attachment{
		{Filename: "photo.jpg", ContentType: "image/jpeg"},
	}})

	assert.Zero(t, result.Score)
	assert.Empty(t, result.Indicators)
}

func TestAnalyzeAttachmentsTakesMaximumRisk(t *testing.T) {
	a := newTestAnalyzer()

	result := a.analyzeAttachments(&core.NormalizedEmail{Attachments: []core.Attachment{
		{Filename: "photo.jpg", ContentType: "image/jpeg"},
		{Filename: "setup.exe", ContentType: "application/octet-stream"},
	}})

	assert.InDelta(t, 0.8, result.Score, 0.001)
	assert.Len(t, result.Attachments, 2)
}
