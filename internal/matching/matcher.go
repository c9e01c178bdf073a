// internal/matching/matcher.go
package matching

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tender-analyzer/internal/common/logger"
	"tender-analyzer/internal/models"
)

// Scoring weights and decision thresholds for requirement/capability
// matching. A best score below the floor means no capability is worth
// naming at all.
const (
	similarityWeight = 0.6
	keywordWeight    = 0.3
	certWeight       = 0.1

	scoreFloor       = 0.3
	partialThreshold = 0.5
	exactThreshold   = 0.8

	maxMatchedKeywords = 10
	maxMissingElements = 3
	minExperienceYears = 3
)

var certTermPattern = []string{"iso", "certification", "certificat", "norme", "label", "agrément"}

var stopWords = map[string]bool{
	"le": true, "la": true, "les": true, "de": true, "des": true, "du": true,
	"un": true, "une": true, "et": true, "ou": true, "pour": true, "dans": true,
	"sur": true, "avec": true, "par": true, "au": true, "aux": true, "ce": true,
	"cette": true, "ces": true, "son": true, "sa": true, "ses": true,
	"est": true, "sont": true, "être": true, "doit": true, "doivent": true,
}

// Matcher scores requirements against the bidder's capability profile.
type Matcher struct {
	similarity SimilarityFunc
	log        logger.Logger
}

// NewMatcher builds a matcher; a nil similarity falls back to TokenJaccard.
func NewMatcher(similarity SimilarityFunc, log logger.Logger) *Matcher {
	if similarity == nil {
		similarity = TokenJaccard
	}
	return &Matcher{similarity: similarity, log: log}
}

// MatchProfile scores every requirement against the profile and aggregates
// the results. The result slice is parallel to reqs.
func (m *Matcher) MatchProfile(reqs []models.Requirement, profile models.CapabilityProfile) ([]models.MatchResult, models.MatchSummary) {
	matches := make([]models.MatchResult, 0, len(reqs))
	for _, req := range reqs {
		matches = append(matches, m.Match(req, profile))
	}

	summary := summarize(reqs, matches)
	m.log.Info("capability matching completed", map[string]interface{}{
		"requirements":  len(reqs),
		"overall_score": summary.OverallScore,
		"exact":         summary.ExactMatches,
		"partial":       summary.PartialMatches,
		"critical_gaps": summary.CriticalGaps,
	})
	return matches, summary
}

// Match scores one requirement against every capability and keeps the best.
func (m *Matcher) Match(req models.Requirement, profile models.CapabilityProfile) models.MatchResult {
	var best *models.Capability
	bestScore := 0.0
	var bestKeywords []string

	reqText := requirementText(req)
	for i := range profile.Capabilities {
		capability := &profile.Capabilities[i]
		capText := capabilityText(capability)

		similarity := clamp01(m.similarity(reqText, capText))
		matched := matchedKeywords(req.Keywords, capText)
		score := similarityWeight*similarity +
			keywordWeight*keywordBoost(req.Keywords, capability) +
			certWeight*certificationBoost(req, profile.Certifications)

		if score > bestScore {
			bestScore = score
			best = capability
			bestKeywords = matched
		}
	}
	bestScore = clamp01(bestScore)

	result := models.MatchResult{
		RequirementID:       req.ID,
		RequirementCategory: req.Category,
		ConfidenceScore:     bestScore,
		MatchedKeywords:     bestKeywords,
	}

	switch {
	case best == nil || bestScore < scoreFloor:
		result.MatchType = models.MatchNone
		result.MatchedKeywords = nil
		result.GapAnalysis = missingGap(req)
	case bestScore < partialThreshold:
		result.MatchType = models.MatchNone
		result.MatchedCapability = best.Domain
		result.GapAnalysis = mismatchGap(req, best)
	case bestScore < exactThreshold:
		result.MatchType = models.MatchPartial
		result.MatchedCapability = best.Domain
		result.GapAnalysis = partialGap(req, best, bestKeywords, bestScore)
	default:
		result.MatchType = models.MatchExact
		result.MatchedCapability = best.Domain
		result.GapAnalysis = models.GapAnalysis{
			EstimatedEffort: models.EffortNone,
			Confidence:      bestScore,
		}
	}

	return result
}

// missingGap covers requirements no capability comes close to.
func missingGap(req models.Requirement) models.GapAnalysis {
	gap := models.GapAnalysis{
		HasGap:            true,
		GapType:           models.GapCapabilityMissing,
		RemediationNeeded: true,
		EstimatedEffort:   models.EffortHigh,
		Confidence:        0.8,
	}
	if req.Priority == models.PriorityEliminatory {
		gap.EstimatedEffort = models.EffortCritical
	}
	if req.IsMandatory {
		gap.Recommendations = []string{
			fmt.Sprintf("Envisager un partenariat ou une sous-traitance pour couvrir: %s", truncate(req.Description, 80)),
		}
	}
	return gap
}

// mismatchGap covers weak matches where a capability exists in the right
// area but the specifics diverge.
func mismatchGap(req models.Requirement, capability *models.Capability) models.GapAnalysis {
	return models.GapAnalysis{
		HasGap:            true,
		GapType:           models.GapTechnologyMismatch,
		RemediationNeeded: true,
		EstimatedEffort:   models.EffortHigh,
		MissingElements:   missingElements(req.Keywords, capabilityText(capability)),
		Recommendations: []string{
			fmt.Sprintf("Évaluer l'écart entre la capacité %q et l'exigence: %s", capability.Domain, truncate(req.Description, 80)),
		},
		Confidence: 0.6,
	}
}

func partialGap(req models.Requirement, capability *models.Capability, matched []string, score float64) models.GapAnalysis {
	gap := models.GapAnalysis{
		HasGap:            true,
		GapType:           models.GapPartialMatch,
		RemediationNeeded: req.IsMandatory,
		EstimatedEffort:   models.EffortMedium,
		MissingElements:   missingElements(req.Keywords, capabilityText(capability)),
		Confidence:        score,
	}
	if capability.ExperienceYears > 0 && capability.ExperienceYears < minExperienceYears {
		gap.GapType = models.GapExperienceInsufficient
		gap.Recommendations = append(gap.Recommendations,
			fmt.Sprintf("Renforcer l'expérience sur %q (%d ans déclarés)", capability.Domain, capability.ExperienceYears))
	}
	return gap
}

func summarize(reqs []models.Requirement, matches []models.MatchResult) models.MatchSummary {
	summary := models.MatchSummary{}
	if len(matches) == 0 {
		return summary
	}

	mandatorySum := 0.0
	mandatoryCount := 0
	for i, match := range matches {
		switch match.MatchType {
		case models.MatchExact:
			summary.ExactMatches++
		case models.MatchPartial:
			summary.PartialMatches++
		default:
			summary.NoMatches++
		}
		if match.GapAnalysis.EstimatedEffort == models.EffortHigh || match.GapAnalysis.EstimatedEffort == models.EffortCritical {
			summary.CriticalGaps++
		}
		if reqs[i].IsMandatory {
			mandatorySum += match.ConfidenceScore
			mandatoryCount++
		}
	}

	total := float64(len(matches))
	summary.OverallScore = (float64(summary.ExactMatches) + 0.5*float64(summary.PartialMatches)) / total
	summary.CapabilityCoverage = float64(summary.ExactMatches+summary.PartialMatches) / total
	if mandatoryCount > 0 {
		summary.MandatoryCompliance = mandatorySum / float64(mandatoryCount)
	} else {
		summary.MandatoryCompliance = 1.0
	}
	return summary
}

// TopRecommendations collects distinct gap recommendations, in match
// order, capped at limit.
func TopRecommendations(matches []models.MatchResult, limit int) []string {
	seen := map[string]bool{}
	var out []string
	for _, match := range matches {
		for _, rec := range match.GapAnalysis.Recommendations {
			if seen[rec] {
				continue
			}
			seen[rec] = true
			out = append(out, rec)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// requirementText is the similarity input for a requirement. Keywords and
// category are folded in so terse descriptions with rich keyword lists
// still overlap with the matching capability.
func requirementText(req models.Requirement) string {
	parts := append([]string{req.Description}, req.Keywords...)
	if req.Category != "" {
		parts = append(parts, string(req.Category))
	}
	return strings.Join(parts, " ")
}

func capabilityText(capability *models.Capability) string {
	parts := []string{capability.Domain}
	parts = append(parts, capability.Technologies...)
	if capability.Description != "" {
		parts = append(parts, capability.Description)
	}
	return strings.Join(parts, " ")
}

// keywordBoost rewards requirement keywords found in the capability. A
// keyword scores once against the technology list and once against the
// domain, so full double coverage earns the whole boost.
func keywordBoost(keywords []string, capability *models.Capability) float64 {
	if len(keywords) == 0 {
		return 0
	}

	domain := strings.ToLower(capability.Domain)
	hits := 0
	for _, keyword := range keywords {
		k := strings.ToLower(keyword)
		if stopWords[k] {
			continue
		}
		for _, tech := range capability.Technologies {
			t := strings.ToLower(tech)
			if t != "" && (strings.Contains(t, k) || strings.Contains(k, t)) {
				hits++
				break
			}
		}
		if domain != "" && (strings.Contains(domain, k) || strings.Contains(k, domain)) {
			hits++
		}
	}
	return clamp01(float64(hits) / float64(len(keywords)*2))
}

func matchedKeywords(keywords []string, capText string) []string {
	lowerCap := strings.ToLower(capText)
	var matched []string
	for _, keyword := range keywords {
		lower := strings.ToLower(keyword)
		if stopWords[lower] {
			continue
		}
		if strings.Contains(lowerCap, lower) {
			matched = append(matched, keyword)
			if len(matched) == maxMatchedKeywords {
				break
			}
		}
	}
	return matched
}

// certificationBoost only applies when the requirement talks about
// certifications at all.
func certificationBoost(req models.Requirement, certifications []models.Certification) float64 {
	lowerDesc := strings.ToLower(req.Description)
	mentioned := false
	for _, term := range certTermPattern {
		if strings.Contains(lowerDesc, term) {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return 0
	}

	matches := 0
	for _, cert := range certifications {
		if cert.Name != "" && strings.Contains(lowerDesc, strings.ToLower(cert.Name)) {
			matches++
		}
	}
	return clamp01(float64(matches) * 0.5)
}

func missingElements(keywords []string, capText string) []string {
	lowerCap := strings.ToLower(capText)
	var missing []string
	for _, keyword := range keywords {
		lower := strings.ToLower(keyword)
		if stopWords[lower] {
			continue
		}
		if !strings.Contains(lowerCap, lower) {
			missing = append(missing, keyword)
			if len(missing) == maxMissingElements {
				break
			}
		}
	}
	return missing
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	// Never cut inside a multi-byte rune.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
