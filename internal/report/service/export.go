package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/crm/internal/companycontext"
	"github.com/smallbiznis/crm/internal/providers/pdf"
	"github.com/smallbiznis/crm/internal/report/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	contentTypePDF   = "application/pdf"
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV   = "text/csv"
	contentTypeJSON  = "application/json"

	excelSheet = "Sheet1"
)

var exportHeaders = []string{"Field", "Value"}

// Export renders a report as a downloadable file. Concurrent exports of the
// same report for one company are serialized.
func (s *Service) Export(ctx context.Context, req domain.Request, format string) (domain.File, error) {
	companyID, ok := companycontext.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return domain.File{}, domain.ErrInvalidCompany
	}
	reportType, err := validateType(req.Type)
	if err != nil {
		return domain.File{}, err
	}
	format, err = normalizeFormat(format)
	if err != nil {
		return domain.File{}, err
	}
	if err := s.allow(ctx, companyID.String()); err != nil {
		return domain.File{}, err
	}

	period, _ := domain.ResolvePeriod(req.Period, s.clock.Now())
	release, err := s.limiter.LockExport(ctx, companyID.String(), reportType, period)
	if err != nil {
		if isLockHeld(err) {
			return domain.File{}, domain.ErrExportInProgress
		}
		s.log.Warn("export lock unavailable", zap.String("company_id", companyID.String()), zap.Error(err))
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("export lock release failed", zap.Error(err))
		}
	}()

	report, err := s.generate(ctx, reportType, req.Period)
	if err != nil {
		return domain.File{}, err
	}

	var file domain.File
	switch format {
	case domain.FormatJSON:
		file, err = renderJSON(report)
	case domain.FormatCSV:
		file, err = renderCSV(report)
	case domain.FormatExcel:
		file, err = renderExcel(report)
	case domain.FormatPDF:
		file, err = s.renderPDF(ctx, report)
	}
	if err != nil {
		return domain.File{}, err
	}

	s.metrics.RecordExport(ctx, reportType, format)
	return file, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "xlsx" {
		format = domain.FormatExcel
	}
	for _, known := range domain.Formats {
		if known == format {
			return format, nil
		}
	}
	return "", domain.ErrUnsupportedFormat
}

func fileName(reportType, ext string) string {
	return fmt.Sprintf("%s-%s.%s", reportType, strings.ToLower(ulid.Make().String()), ext)
}

func renderJSON(report domain.Report) (domain.File, error) {
	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return domain.File{}, err
	}
	return domain.File{Name: fileName(report.ReportType, "json"), ContentType: contentTypeJSON, Content: content}, nil
}

func renderCSV(report domain.Report) (domain.File, error) {
	rows, err := flatten(report)
	if err != nil {
		return domain.File{}, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return domain.File{}, err
	}
	if err := w.WriteAll(rows); err != nil {
		return domain.File{}, err
	}
	return domain.File{Name: fileName(report.ReportType, "csv"), ContentType: contentTypeCSV, Content: buf.Bytes()}, nil
}

func renderExcel(report domain.Report) (domain.File, error) {
	rows, err := flatten(report)
	if err != nil {
		return domain.File{}, err
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return domain.File{}, err
	}
	if err := f.SetSheetRow(excelSheet, "A1", &[]any{titleOf(report.ReportType), report.Period}); err != nil {
		return domain.File{}, err
	}
	if err := f.SetSheetRow(excelSheet, "A3", &[]any{exportHeaders[0], exportHeaders[1]}); err != nil {
		return domain.File{}, err
	}
	if err := f.SetCellStyle(excelSheet, "A1", "B3", header); err != nil {
		return domain.File{}, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return domain.File{}, err
		}
		if err := f.SetSheetRow(excelSheet, cell, &[]any{row[0], row[1]}); err != nil {
			return domain.File{}, err
		}
	}
	if err := f.SetColWidth(excelSheet, "A", "A", 48); err != nil {
		return domain.File{}, err
	}
	if err := f.SetColWidth(excelSheet, "B", "B", 32); err != nil {
		return domain.File{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return domain.File{}, err
	}
	return domain.File{Name: fileName(report.ReportType, "xlsx"), ContentType: contentTypeExcel, Content: buf.Bytes()}, nil
}

func (s *Service) renderPDF(ctx context.Context, report domain.Report) (domain.File, error) {
	rows, err := flatten(report)
	if err != nil {
		return domain.File{}, err
	}
	content, err := s.pdf.RenderTable(ctx, pdf.Table{
		Title: titleOf(report.ReportType),
		Subtitle: fmt.Sprintf("%s (%s to %s)",
			report.Period,
			report.DateRange.StartDate.Format("2006-01-02"),
			report.DateRange.EndDate.Format("2006-01-02"),
		),
		Headers: exportHeaders,
		Rows:    rows,
	})
	if err != nil {
		return domain.File{}, err
	}
	return domain.File{Name: fileName(report.ReportType, "pdf"), ContentType: contentTypePDF, Content: content}, nil
}

// flatten turns report data into sorted (path, value) rows. Nested keys are
// joined with dots and list elements indexed as [n].
func flatten(report domain.Report) ([][]string, error) {
	raw, err := json.Marshal(report.Data)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	var rows [][]string
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch t := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(joinPath(prefix, k), t[k])
			}
		case []any:
			if len(t) == 0 {
				rows = append(rows, []string{prefix, ""})
			}
			for i, item := range t {
				walk(fmt.Sprintf("%s[%d]", prefix, i), item)
			}
		default:
			rows = append(rows, []string{prefix, scalar(t)})
		}
	}
	walk("", data)
	return rows, nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// titleOf turns "sales-pipeline" into "Sales Pipeline".
func titleOf(reportType string) string {
	words := strings.Split(reportType, "-")
	for i, w := range words {
		switch w {
		case "amc":
			words[i] = "AMC"
		case "":
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
