package aggregator

import (
	"fmt"
	"strings"
)

// RiskGrade is the letter grade shown in the top strip of the dashboard
type RiskGrade struct {
	Letter string `json:"letter"` // A, B, C, D, F
	Status string `json:"status"` // Secure, Good, Fix Required
	Color  string `json:"color"`
}

// Badge is the coarse classification shown next to the security score.
// It uses its own thresholds and does not have to agree with RiskGrade.
type Badge string

const (
	BadgeGood   Badge = "Good"
	BadgeFair   Badge = "Fair"
	BadgeAtRisk Badge = "At Risk"
)

// Grade maps a 0-100 security score to a letter grade
func Grade(score int) RiskGrade {
	switch {
	case score >= 90:
		return RiskGrade{Letter: "A", Status: "Secure", Color: "#16a34a"}
	case score >= 75:
		return RiskGrade{Letter: "B", Status: "Good", Color: "#65a30d"}
	case score >= 60:
		return RiskGrade{Letter: "C", Status: "Fix Required", Color: "#ca8a04"}
	case score >= 40:
		return RiskGrade{Letter: "D", Status: "Fix Required", Color: "#ea580c"}
	default:
		return RiskGrade{Letter: "F", Status: "Fix Required", Color: "#dc2626"}
	}
}

// BadgeFor maps a 0-100 security score to the score-card badge
func BadgeFor(score int) Badge {
	switch {
	case score >= 80:
		return BadgeGood
	case score >= 60:
		return BadgeFair
	default:
		return BadgeAtRisk
	}
}

// FormatINR renders an amount in rupees with Indian digit grouping and no
// fractional part, e.g. 1234567 -> ₹12,34,567.
func FormatINR(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := fmt.Sprintf("%.0f", amount)

	var b strings.Builder
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		first := len(head) % 2
		if first > 0 {
			b.WriteString(head[:first])
		}
		for i := first; i < len(head); i += 2 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(head[i : i+2])
		}
		b.WriteByte(',')
		b.WriteString(tail)
	} else {
		b.WriteString(digits)
	}

	if neg {
		return "-₹" + b.String()
	}
	return "₹" + b.String()
}
