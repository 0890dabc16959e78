package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/kerucko/tasklist/internal/models"
)

var ErrUnknownFormat = errors.New("unknown export format")

type taskLister interface {
	List(ctx context.Context) ([]models.Task, error)
}

// Exporter renders the current task list as a downloadable document.
type Exporter struct {
	tasks taskLister
}

func NewExporter(tasks taskLister) *Exporter { return &Exporter{tasks: tasks} }

// ContentType returns the MIME type for format, or "" when format is unknown.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv; charset=utf-8"
	case "pdf":
		return "application/pdf"
	default:
		return ""
	}
}

func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	if ContentType(format) == "" {
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}

	all, err := e.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(all, "", "  ")
	case "csv":
		return renderCSV(all)
	default:
		return renderPDF(all)
	}
}

func renderCSV(all []models.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "title", "completed", "createdAt", "updatedAt"})
	for _, t := range all {
		_ = w.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			strconv.FormatBool(t.Completed),
			t.CreatedAt.Format(time.RFC3339),
			formatUpdated(t.UpdatedAt),
		})
	}
	w.Flush()
	return b.Bytes(), w.Error()
}

func renderPDF(all []models.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task List")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)

	if len(all) == 0 {
		pdf.Cell(40, 6, "No tasks.")
	}
	for _, t := range all {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s #%d %s (created %s)", mark, t.ID, t.Title, t.CreatedAt.Format(time.RFC3339))
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatUpdated(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
