// Package plan maps subscription plans to the features they unlock.
package plan

import (
	"fmt"
	"strings"
)

// Plan is a subscription tier.
type Plan string

const (
	Starter    Plan = "starter"
	Pro        Plan = "pro"
	Enterprise Plan = "enterprise"
)

// Default is the plan used when none has been chosen.
const Default = Starter

// All lists the plans in ascending tier order.
var All = []Plan{Starter, Pro, Enterprise}

// Feature is a gated capability of the dashboard.
type Feature string

const (
	TeamCollaboration Feature = "team_collaboration"
	ReportDownload    Feature = "report_download"
)

// Notes and prompts shown next to gated features.
const (
	PDFNote       = "PDF export is part of Pro plan (enabled for demo)"
	UpgradeBanner = "Upgrade to Pro to unlock PDF Reports"
	TeamUpgrade   = "Team collaboration is available on the Enterprise plan. Upgrade to invite teammates and share audit summaries."
)

// EnterpriseFeatures lists what the team collaboration upgrade unlocks.
var EnterpriseFeatures = []string{
	"Multi-user Access",
	"Shared Audit Workspace",
	"AI Summary Sharing",
	"Activity Timeline",
}

// Parse converts user input to a Plan. Empty input yields Default.
func Parse(s string) (Plan, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	for _, p := range All {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown plan %q (valid: starter, pro, enterprise)", s)
}

// Enabled reports whether a feature is available on a plan.
func Enabled(p Plan, f Feature) bool {
	switch f {
	case TeamCollaboration:
		return p == Enterprise
	case ReportDownload:
		// available to every plan for the demo
		return true
	default:
		return false
	}
}

// Note returns the advisory text shown next to a feature on a plan, if any.
func Note(p Plan, f Feature) string {
	if f == ReportDownload && p == Starter {
		return PDFNote
	}
	if f == TeamCollaboration && !Enabled(p, f) {
		return TeamUpgrade
	}
	return ""
}

// Banner returns the upgrade banner shown on the results view, if any.
func Banner(p Plan) string {
	if p == Starter {
		return UpgradeBanner
	}
	return ""
}

// Title returns the display name of a plan.
func (p Plan) Title() string {
	switch p {
	case Starter:
		return "Starter"
	case Pro:
		return "Pro"
	case Enterprise:
		return "Enterprise"
	default:
		return string(p)
	}
}
