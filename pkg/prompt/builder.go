// Package prompt assembles the system instruction sent to the model: a fixed
// policy preamble plus an optional context block rendered from the user's most
// recent health records.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"qr-health-be/internal/entity"
)

// MaxContextRecords bounds how many records may be injected into one prompt.
const MaxContextRecords = 10

// HealthSystemPrompt defines the assistant's role and safety constraints.
const HealthSystemPrompt = `You are QR Health Assistant, an AI health advisor created by Quantum Rishi (SV Enterprises).

Your role is to:
- Help users understand their health records
- Provide general health information and wellness tips
- Answer questions about medical terminology
- Suggest when users should consult healthcare professionals

IMPORTANT GUIDELINES:
- Always recommend consulting a doctor for specific medical advice
- Never diagnose conditions or prescribe treatments
- Be empathetic and supportive
- Protect user privacy - never ask for unnecessary personal information
- If unsure, say so and recommend professional consultation

You have access to the user's uploaded health records context when provided.`

// BuildRecordContext renders at most MaxContextRecords records, most recent
// first by record date, one line each. An empty record set produces an empty
// string, not an empty section.
func BuildRecordContext(records []*entity.HealthRecord) string {
	if len(records) == 0 {
		return ""
	}

	sorted := make([]*entity.HealthRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordDate.After(sorted[j].RecordDate)
	})
	if len(sorted) > MaxContextRecords {
		sorted = sorted[:MaxContextRecords]
	}

	lines := make([]string, 0, len(sorted))
	for _, r := range sorted {
		description := r.Description
		if description == "" {
			description = "No description"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s, %s): %s",
			r.Title, r.RecordType, r.RecordDate.Format("2006-01-02"), description))
	}
	return strings.Join(lines, "\n")
}

// BuildSystemPrompt merges the policy preamble with a context block. An empty
// block yields the bare preamble.
func BuildSystemPrompt(contextBlock string) string {
	if contextBlock == "" {
		return HealthSystemPrompt
	}
	return fmt.Sprintf("%s\n\nUser's Health Record Context:\n%s", HealthSystemPrompt, contextBlock)
}
