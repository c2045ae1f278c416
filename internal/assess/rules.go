package assess

import (
	"strconv"
	"strings"

	"github.com/AditthyaSS/VulnExplain/internal/models"
)

var severityByCWE = map[string]models.Severity{
	"CWE-89":  models.SeverityCritical, // SQL Injection
	"CWE-79":  models.SeverityCritical, // XSS
	"CWE-78":  models.SeverityCritical, // OS Command Injection
	"CWE-94":  models.SeverityCritical, // Code Injection
	"CWE-22":  models.SeverityCritical, // Path Traversal
	"CWE-798": models.SeverityCritical, // Hardcoded Credentials
	"CWE-502": models.SeverityCritical, // Deserialization
	"CWE-601": models.SeverityHigh,     // Open Redirect
	"CWE-352": models.SeverityHigh,     // CSRF
	"CWE-918": models.SeverityHigh,     // SSRF
	"CWE-434": models.SeverityHigh,     // Unrestricted File Upload
	"CWE-862": models.SeverityHigh,     // Missing Authorization
	"CWE-863": models.SeverityHigh,     // Incorrect Authorization
	"CWE-306": models.SeverityHigh,     // Missing Authentication
	"CWE-532": models.SeverityMedium,   // Information Exposure Through Log Files
	"CWE-200": models.SeverityMedium,   // Information Exposure
	"CWE-327": models.SeverityMedium,   // Weak Crypto
	"CWE-311": models.SeverityMedium,   // Missing Encryption
	"CWE-284": models.SeverityMedium,   // Improper Access Control
	"CWE-676": models.SeverityLow,      // Use of Potentially Dangerous Function
	"CWE-732": models.SeverityLow,      // Incorrect Permission Assignment
}

var categoryByCWE = map[string]string{
	"CWE-89":  "SQL Injection",
	"CWE-79":  "Cross-Site Scripting (XSS)",
	"CWE-78":  "OS Command Injection",
	"CWE-94":  "Code Injection",
	"CWE-22":  "Path Traversal",
	"CWE-798": "Hardcoded Credentials",
	"CWE-502": "Insecure Deserialization",
	"CWE-601": "Open Redirect",
	"CWE-352": "Cross-Site Request Forgery (CSRF)",
	"CWE-918": "Server-Side Request Forgery (SSRF)",
	"CWE-434": "Unrestricted File Upload",
	"CWE-862": "Missing Authorization",
	"CWE-863": "Incorrect Authorization",
	"CWE-306": "Missing Authentication",
	"CWE-287": "Improper Authentication",
	"CWE-532": "Information Exposure Through Logs",
	"CWE-200": "Information Exposure",
	"CWE-327": "Weak Cryptography",
	"CWE-311": "Missing Encryption",
	"CWE-284": "Improper Access Control",
	"CWE-676": "Use of Dangerous Function",
	"CWE-732": "Incorrect Permissions",
}

// Remediation hours per severity
var fixHours = map[models.Severity]float64{
	models.SeverityCritical: 24,
	models.SeverityHigh:     8,
	models.SeverityMedium:   4,
	models.SeverityLow:      1,
}

const defaultFixHours = 4

// Score penalty per finding
var scorePenalty = map[models.Severity]int{
	models.SeverityCritical: 25,
	models.SeverityHigh:     15,
	models.SeverityMedium:   8,
}

const defaultPenalty = 3

// Cost model, INR
const (
	devRatePerHour     = 2500
	downtimeHours      = 4
	downtimeRatePerHr  = 50000
	finePerCritical    = 250000
	reputationPerIssue = 100000
)

// NormalizeCWE canonicalizes a CWE identifier: upper case, trimmed, and
// without leading zeros in the number ("cwe-022" -> "CWE-22"). Identifiers
// that do not look like CWE-<n> are only trimmed and upper-cased.
func NormalizeCWE(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	num, ok := strings.CutPrefix(id, "CWE-")
	if !ok {
		return id
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return id
	}
	return "CWE-" + strconv.Itoa(n)
}

// SeverityFor assigns a severity from the CWE id. Unmapped ids are Medium.
func SeverityFor(cwe string) models.Severity {
	if sev, ok := severityByCWE[NormalizeCWE(cwe)]; ok {
		return sev
	}
	return models.SeverityMedium
}

// FixHoursFor returns the estimated remediation time for a severity.
func FixHoursFor(sev models.Severity) float64 {
	if h, ok := fixHours[sev]; ok {
		return h
	}
	return defaultFixHours
}

// PenaltyFor returns the score deduction for one finding of a severity.
func PenaltyFor(sev models.Severity) int {
	if p, ok := scorePenalty[sev]; ok {
		return p
	}
	return defaultPenalty
}

// CategoryFor assigns a display category from the CWE id.
func CategoryFor(cwe string) string {
	if c, ok := categoryByCWE[NormalizeCWE(cwe)]; ok {
		return c
	}
	return models.DefaultCategory
}
