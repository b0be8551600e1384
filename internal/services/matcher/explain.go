package matcher

import (
	"fmt"
	"strings"

	"kisanmitra-scheme-engine/internal/models"
)

// Explanation markers.
const (
	EligibleBanner    = "✅ **You are ELIGIBLE**"
	NotEligibleBanner = "❌ **Not Currently Eligible**"

	headingQualify = "**Why you qualify:**"
	headingHave    = "**What you have:**"
	headingMissing = "**What's missing:**"
	headingActions = "**What to do:**"
)

// Explain renders a match result as a markdown-style text block.
func Explain(result models.MatchResult) string {
	var b strings.Builder

	name := ""
	if result.Scheme != nil {
		name = result.Scheme.Name
	}
	fmt.Fprintf(&b, "**%s** - %d%% Match\n\n", name, result.MatchScore)

	if result.IsEligible {
		b.WriteString(EligibleBanner + "\n\n")
		writeBullets(&b, headingQualify, result.Reasons)
		return b.String()
	}

	b.WriteString(NotEligibleBanner + "\n\n")
	if len(result.Reasons) > 0 {
		writeBullets(&b, headingHave, result.Reasons)
		b.WriteString("\n")
	}
	if len(result.MissingRequirements) > 0 {
		writeBullets(&b, headingMissing, result.MissingRequirements)
		b.WriteString("\n")
	}
	if len(result.RequiredActions) > 0 {
		writeBullets(&b, headingActions, result.RequiredActions)
	}

	return b.String()
}

func writeBullets(b *strings.Builder, heading string, items []string) {
	b.WriteString(heading + "\n")
	for _, item := range items {
		b.WriteString("• " + item + "\n")
	}
}
