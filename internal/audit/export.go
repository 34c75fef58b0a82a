package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/abdelrhman06/session-audit-api/internal/database"
)

// exportColumns is the spreadsheet-compatible column order. Score and
// Session Rating sit between Auditor and Project Coordinator, matching the
// sheet layout downstream consumers already ingest.
var exportColumns = []string{
	"Timestamp", "Level", "Session type", "Day/Number", "Group Code",
	"Recorded session link", "Month", "Session Date", "Governorate", "Area",
	"Center Name", "Instructor Code", "Instructor Name", "Camera",
	"Camera quality", "Camera Coverage", "Sound", "Internet connection",
	"Full Session?", "Session duration ( hours)", "Students seated",
	"Coordinator appearance", "Room adequacy", "Instructor appearance",
	"Instructor Attitude", "English language of instructor",
	"Language of instructor (slang language is used)", "Activity", "Break",
	"Break Time ( Minutes)", "Students feedback average score",
	"Coordinator feedback score", "Positive Comments", "Negative Comments",
	"Auditor", "Score", "Session Rating", "Project Coordinator",
	"Students Comment", "Validity", "Our Comments",
}

// ExportColumns returns the CSV column order.
func ExportColumns() []string {
	cols := make([]string, len(exportColumns))
	copy(cols, exportColumns)
	return cols
}

// ExportCSV streams the matching audits as CSV, newest first.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, filter database.AuditFilter) error {
	records, err := s.repo.ListAudits(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(exportColumns))
	for _, record := range records {
		for i, column := range exportColumns {
			switch column {
			case "Timestamp":
				row[i] = record.CreatedAt.Format("2006-01-02 15:04:05")
			case "Score":
				row[i] = strconv.Itoa(record.Score)
			case "Session Rating":
				row[i] = record.Rating
			default:
				row[i] = cellValue(record.Answers[column])
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cellValue renders an answer for a CSV cell. Unanswered fields come out
// blank; numbers drop trailing zeros to match hand-entered data.
func cellValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}
