package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

var (
	exportFormat string
	exportOutput string
	exportLastN  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit findings for compliance reporting",
	Long: `Export stored audits in formats suitable for SOC 2 evidence packages and
code scanning tools. Each finding keeps its CWE, SOC 2 controls, and data
impact.

Supported formats:
  csv    Tabular format for spreadsheets and compliance tools
  json   Structured JSON for programmatic consumption
  sarif  SARIF 2.1.0 for GitHub Advanced Security and code scanning

Example:
  vulnexplain export --format csv -o audit-evidence.csv
  vulnexplain export --format sarif -o results.sarif --last 1
  vulnexplain export --format json --last 30 -o evidence.json`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv",
		"output format: csv, json, or sarif")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"write output to file (default: stdout)")
	exportCmd.Flags().IntVarP(&exportLastN, "last", "n", 1,
		"number of recent audits to include")
}

// ComplianceRecord is a single row in the compliance export.
type ComplianceRecord struct {
	AuditID       string `json:"audit_id"`
	AuditTime     string `json:"audit_timestamp"`
	Severity      string `json:"severity"`
	Category      string `json:"category"`
	Title         string `json:"title"`
	CWE           string `json:"cwe_id"`
	Location      string `json:"location"`
	SOC2Controls  string `json:"soc2_controls"`
	DataImpact    string `json:"data_impact"`
	FixTimeHours  string `json:"fix_time_hours"`
	SecurityScore string `json:"security_score"`
}

// ComplianceExport is the full export payload.
type ComplianceExport struct {
	ExportedAt  string             `json:"exported_at"`
	AuditCount  int                `json:"audit_count"`
	RecordCount int                `json:"record_count"`
	Framework   string             `json:"framework"`
	Records     []ComplianceRecord `json:"records"`
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	results, err := store.GetLastNResults(exportLastN)
	if err != nil || len(results) == 0 {
		fmt.Println("No stored audits found. Run 'vulnexplain scan --store' first.")
		return nil
	}

	logVerbose("Exporting %d audits", len(results))

	var writer *os.File
	if exportOutput != "" {
		writer, err = os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	} else {
		writer = os.Stdout
	}

	switch exportFormat {
	case "csv":
		return writeCSV(writer, buildComplianceExport(results))
	case "json":
		return writeExportJSON(writer, buildComplianceExport(results))
	case "sarif":
		return writeSARIF(writer, results)
	default:
		return fmt.Errorf("unsupported format: %s (use csv, json, or sarif)", exportFormat)
	}
}

func buildComplianceExport(results []*models.AuditResult) *ComplianceExport {
	var records []ComplianceRecord

	for _, r := range results {
		ts := r.Timestamp.UTC().Format(time.RFC3339)
		score := fmt.Sprintf("%d", r.SecurityScore)

		for _, v := range r.Vulnerabilities {
			records = append(records, ComplianceRecord{
				AuditID:       r.ID,
				AuditTime:     ts,
				Severity:      string(v.Severity),
				Category:      v.CategoryOrDefault(),
				Title:         v.Title,
				CWE:           v.CWEID,
				Location:      v.Location,
				SOC2Controls:  strings.Join(v.SOC2Controls, "; "),
				DataImpact:    strings.Join(v.DataImpact, "; "),
				FixTimeHours:  fmt.Sprintf("%g", v.FixTimeHours),
				SecurityScore: score,
			})
		}
	}

	// Most severe first, then category, then location.
	sort.SliceStable(records, func(i, j int) bool {
		ri := models.Rank(models.Severity(records[i].Severity))
		rj := models.Rank(models.Severity(records[j].Severity))
		if ri != rj {
			return ri > rj
		}
		if records[i].Category != records[j].Category {
			return records[i].Category < records[j].Category
		}
		return records[i].Location < records[j].Location
	})

	return &ComplianceExport{
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		AuditCount:  len(results),
		RecordCount: len(records),
		Framework:   "SOC2",
		Records:     records,
	}
}

func writeCSV(w io.Writer, export *ComplianceExport) error {
	writer := csv.NewWriter(w)

	header := []string{
		"audit_id", "audit_timestamp", "severity", "category", "title", "cwe_id",
		"location", "soc2_controls", "data_impact", "fix_time_hours", "security_score",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range export.Records {
		row := []string{
			r.AuditID, r.AuditTime, r.Severity, r.Category, r.Title, r.CWE,
			r.Location, r.SOC2Controls, r.DataImpact, r.FixTimeHours, r.SecurityScore,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeExportJSON(w io.Writer, export *ComplianceExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}

// SARIF 2.1.0 output for GitHub Advanced Security integration.
// Minimal structures, only what's needed for valid SARIF.

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	Help             *sarifMessage      `json:"help,omitempty"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func writeSARIF(w io.Writer, results []*models.AuditResult) error {
	rulesMap := map[string]sarifRule{}
	sarifResults := []sarifResult{}

	for _, r := range results {
		for _, v := range r.Vulnerabilities {
			ruleID := sarifRuleID(v)
			if _, exists := rulesMap[ruleID]; !exists {
				rule := sarifRule{
					ID:               ruleID,
					ShortDescription: sarifMessage{Text: v.CategoryOrDefault()},
					DefaultConfig:    sarifDefaultConfig{Level: sarifLevel(v.Severity)},
				}
				if v.Remediation != "" {
					rule.Help = &sarifMessage{Text: v.Remediation}
				}
				rulesMap[ruleID] = rule
			}

			res := sarifResult{
				RuleID:  ruleID,
				Level:   sarifLevel(v.Severity),
				Message: sarifMessage{Text: formatEvidence(v)},
			}
			if loc, ok := sarifLocationFor(v.Location); ok {
				res.Locations = []sarifLocation{loc}
			}
			sarifResults = append(sarifResults, res)
		}
	}

	rules := make([]sarifRule, 0, len(rulesMap))
	for _, r := range rulesMap {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:    "vulnexplain",
					Version: buildVersion,
					Rules:   rules,
				},
			},
			Results: sarifResults,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

// sarifRuleID prefers the CWE id and falls back to the category.
func sarifRuleID(v models.Vulnerability) string {
	if v.CWEID != "" {
		return strings.ToUpper(strings.TrimSpace(v.CWEID))
	}
	return strings.ReplaceAll(strings.ToLower(v.CategoryOrDefault()), " ", "-")
}

// sarifLocationFor splits "path:line" locations. Locations without a path
// are dropped.
func sarifLocationFor(location string) (sarifLocation, bool) {
	location = strings.TrimSpace(location)
	if location == "" {
		return sarifLocation{}, false
	}

	loc := sarifLocation{PhysicalLocation: sarifPhysical{ArtifactLocation: sarifArtifact{URI: location}}}
	if i := strings.LastIndex(location, ":"); i > 0 {
		var line int
		if _, err := fmt.Sscanf(location[i+1:], "%d", &line); err == nil && line > 0 {
			loc.PhysicalLocation.ArtifactLocation.URI = location[:i]
			loc.PhysicalLocation.Region = &sarifRegion{StartLine: line}
		}
	}
	return loc, true
}

func sarifLevel(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical, models.SeverityHigh:
		return "error"
	case models.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func formatEvidence(v models.Vulnerability) string {
	parts := []string{v.Title}
	if v.Description != "" {
		parts = append(parts, v.Description)
	}
	return strings.Join(parts, ". ")
}
