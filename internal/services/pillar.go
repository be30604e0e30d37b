package services

import (
	"encoding/json"
	"strings"

	"github.com/yungbote/lifepillar-backend/internal/types"
)

// The fixed set of assessment pillars. Everything outside this list is
// rejected at the write path.
const (
	PillarSelfCare      = "self_care"
	PillarHealth        = "health"
	PillarRelationships = "relationships"
	PillarCareer        = "career"
	PillarFinances      = "finances"
	PillarSkills        = "skills"
	PillarMindset       = "mindset"
)

var allPillars = []string{
	PillarSelfCare,
	PillarHealth,
	PillarRelationships,
	PillarCareer,
	PillarFinances,
	PillarSkills,
	PillarMindset,
}

// pillarKeywords is the heuristic fallback for legacy entries that never
// recorded an explicit pillar_type. Order matters: first hit wins, so the
// more specific vocabularies come before the catch-all ones.
var pillarKeywords = []struct {
	pillar   string
	keywords []string
}{
	{PillarSelfCare, []string{"self care", "self-care", "rest", "recharge", "burnout", "sleep hygiene"}},
	{PillarHealth, []string{"health", "fitness", "exercise", "nutrition", "diet", "workout"}},
	{PillarRelationships, []string{"relationship", "partner", "family", "friend", "social connection"}},
	{PillarFinances, []string{"finance", "money", "budget", "saving", "debt", "investment"}},
	{PillarCareer, []string{"career", "job", "work", "promotion", "professional"}},
	{PillarSkills, []string{"skill", "learning", "study", "course", "practice"}},
	{PillarMindset, []string{"mindset", "attitude", "resilience", "gratitude", "confidence"}},
}

// IsValidPillar reports whether p names a known pillar.
func IsValidPillar(p string) bool {
	for _, known := range allPillars {
		if p == known {
			return true
		}
	}
	return false
}

// AllPillars returns the pillar enumeration in canonical order.
func AllPillars() []string {
	out := make([]string, len(allPillars))
	copy(out, allPillars)
	return out
}

// ClassifyPillar maps free text to a pillar via the keyword table.
// Returns ("", false) when nothing matches.
func ClassifyPillar(text string) (string, bool) {
	lowered := strings.ToLower(text)
	if strings.TrimSpace(lowered) == "" {
		return "", false
	}
	for _, entry := range pillarKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.pillar, true
			}
		}
	}
	return "", false
}

// ClassifyLegacyEntry resolves the pillar of a legacy event. An explicit
// pillar_type in the metadata wins; otherwise the details text is run
// through the keyword table.
func ClassifyLegacyEntry(entry *types.LegacyEntry) (string, bool) {
	if entry == nil {
		return "", false
	}
	meta := decodeLegacyMetadata(entry)
	if raw, ok := meta["pillar_type"].(string); ok {
		candidate := strings.ToLower(strings.TrimSpace(raw))
		if IsValidPillar(candidate) {
			return candidate, true
		}
	}
	return ClassifyPillar(entry.Details)
}

func decodeLegacyMetadata(entry *types.LegacyEntry) map[string]any {
	meta := map[string]any{}
	if entry == nil || len(entry.Metadata) == 0 {
		return meta
	}
	// Corrupt metadata is treated the same as absent metadata.
	_ = json.Unmarshal(entry.Metadata, &meta)
	return meta
}
