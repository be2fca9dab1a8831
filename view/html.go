package view

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"github.com/abalx/nginx-log-analyzer/stat"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed templates/report.html
var defaultTemplate string

const tableJSONPlaceholder = "$table_json"

/*
A component used to render the ranked report rows into an HTML page.

Responsibilities:
	- substitute the rows JSON into the report template
	- name the output after the analyzed log date, `report-YYYY.MM.DD.html`
	- probe whether a report for that date already exists, so a run can
	be skipped instead of re-parsing the same log

Attention:
	- the template is a plain placeholder substitution, not a template
	engine; the embedded default can be overridden with a file path
*/
type HTMLReport struct {
	reportDir    string
	templatePath string
}

func NewHTMLReport(reportDir string, templatePath string) (*HTMLReport, error) {
	if reportDir == "" {
		return nil, fmt.Errorf("reportDir can't be empty")
	}
	return &HTMLReport{reportDir: reportDir, templatePath: templatePath}, nil
}

func (v *HTMLReport) ReportPath(logDate time.Time) string {
	name := fmt.Sprintf("report-%04d.%02d.%02d.html", logDate.Year(), logDate.Month(), logDate.Day())
	return filepath.Join(v.reportDir, name)
}

func (v *HTMLReport) Exists(logDate time.Time) bool {
	_, statErr := os.Stat(v.ReportPath(logDate))
	return statErr == nil
}

func (v *HTMLReport) Render(rows []stat.Row, logDate time.Time) (string, error) {
	templateContent := defaultTemplate
	if v.templatePath != "" {
		custom, readErr := os.ReadFile(v.templatePath)
		if readErr != nil {
			return "", fmt.Errorf("can't read report template %v: %v", v.templatePath, readErr)
		}
		templateContent = string(custom)
	}

	tableJSON, marshalErr := json.Marshal(rows)
	if marshalErr != nil {
		return "", fmt.Errorf("can't marshal report rows: %v", marshalErr)
	}

	mkdirErr := os.MkdirAll(v.reportDir, 0o750)
	if mkdirErr != nil {
		return "", fmt.Errorf("can't create report directory %v: %v", v.reportDir, mkdirErr)
	}

	reportPath := v.ReportPath(logDate)
	content := strings.Replace(templateContent, tableJSONPlaceholder, string(tableJSON), 1)
	writeErr := os.WriteFile(reportPath, []byte(content), 0o640)
	if writeErr != nil {
		return "", fmt.Errorf("can't write report %v: %v", reportPath, writeErr)
	}
	return reportPath, nil
}
