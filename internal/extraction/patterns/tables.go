// internal/extraction/patterns/tables.go
package patterns

import (
	"regexp"

	"tender-analyzer/internal/models"
)

// The extraction rules live in data tables rather than control flow so they
// can be unit-tested and extended without touching the extractors.
//
// Word-boundary anchors are ASCII-only in RE2, so patterns avoid \b next to
// accented letters; accented lexicon entries match as substrings instead.

// PriorityRule binds an obligation pattern to the priority it implies.
type PriorityRule struct {
	Pattern  *regexp.Regexp
	Priority models.Priority
}

// priorityRules are evaluated in order; the first match wins. Eliminatory
// wording outranks plain obligation, which outranks desirability.
var priorityRules = []PriorityRule{
	{regexp.MustCompile(`(?i)(éliminatoire|sous peine de|à peine de|rejet de l'offre)`), models.PriorityEliminatory},
	{regexp.MustCompile(`(?i)(\bdoit\b|\bdoivent\b|\bdevra\b|\bdevront\b|est tenu de|sont tenus de|obligatoirement|\bobligatoires?\b|impérati|exigé|\brequise?s?\b)`), models.PriorityMandatory},
	{regexp.MustCompile(`(?i)(souhaitable|souhaité|recommandé|apprécié|de préférence|serait un plus|idéalement)`), models.PriorityDesirable},
	{regexp.MustCompile(`(?i)(\boptionnelle?s?\b|facultati|éventuellement|\bpourra\b|\bpourront\b|\bpeut\b|\bpeuvent\b)`), models.PriorityOptional},
}

// obligationPattern flags a sentence as a requirement candidate.
var obligationPattern = regexp.MustCompile(`(?i)(\bdoit\b|\bdoivent\b|\bdevra\b|\bdevront\b|est tenu de|sont tenus de|obligatoirement|\bobligatoires?\b|impérati|exigé|\brequise?s?\b|\bfournira?\b|\bgarantira?\b|\bassurera?\b|\brespectera?\b|souhaitable|souhaité|recommandé|apprécié|\boptionnelle?s?\b|facultati)`)

// strongObligationPattern marks the unambiguous obligation verbs; ties in
// priority detection resolve toward mandatory when one is present.
var strongObligationPattern = regexp.MustCompile(`(?i)(\bdoit\b|\bdoivent\b|\bdevra\b|\bdevront\b|obligatoirement|\bobligatoires?\b|impérati)`)

// categoryKeywords score a sentence against each requirement category. The
// highest-scoring category wins; the section title breaks ties.
var categoryKeywords = map[models.Category][]string{
	models.CategoryTechnical: {
		"technique", "architecture", "système", "serveur", "infrastructure",
		"logiciel", "matériel", "réseau", "base de données", "api",
		"interface", "intégration", "développement", "hébergement",
	},
	models.CategoryFunctional: {
		"fonctionnalité", "fonctionnel", "module", "écran", "utilisateur",
		"gestion", "saisie", "workflow", "tableau de bord", "recherche",
	},
	models.CategoryAdministrative: {
		"administratif", "dossier", "candidature", "pièce", "formulaire",
		"attestation", "déclaration", "mémoire", "justificatif",
	},
	models.CategoryFinancial: {
		"prix", "financier", "budget", "montant", "facturation", "paiement",
		"coût", "tarif", "révision",
	},
	models.CategoryLegal: {
		"juridique", "contrat", "clause", "résiliation", "litige", "droit",
		"réglementation", "rgpd", "propriété intellectuelle", "assurance",
	},
	models.CategorySecurity: {
		"sécurité", "confidentialité", "chiffrement", "authentification",
		"habilitation", "sauvegarde", "incident", "vulnérabilité",
	},
	models.CategoryQualification: {
		"référence", "expérience", "certification", "qualification",
		"diplôme", "compétence", "effectif", "agrément",
	},
	models.CategoryPerformance: {
		"performance", "disponibilité", "temps de réponse", "délai de réponse",
		"sla", "charge", "capacité", "volumétrie",
	},
}

// sectionCategories maps section-title keywords to categories, used as a
// fallback when the sentence itself scores nothing.
var sectionCategories = map[string]models.Category{
	"technique":         models.CategoryTechnical,
	"fonctionnel":       models.CategoryFunctional,
	"administratif":     models.CategoryAdministrative,
	"prix":              models.CategoryFinancial,
	"financier":         models.CategoryFinancial,
	"juridique":         models.CategoryLegal,
	"sécurité":          models.CategorySecurity,
	"qualification":     models.CategoryQualification,
	"candidature":       models.CategoryQualification,
	"performance":       models.CategoryPerformance,
	"niveau de service": models.CategoryPerformance,
}

// Keyword shapes worth surfacing on a requirement.
var keywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z]{2,}\b`),
	regexp.MustCompile(`\b[A-Z][a-zà-ÿ]+(?:[A-Z][a-zà-ÿ]+)+`),
	regexp.MustCompile(`\b\d+\s*(?:ans?\b|jours?\b|mois\b|heures?\b|%|€|Mo\b|Go\b|To\b)`),
}

// HasObligation reports whether the text carries any obligation wording at
// all. Used to decide if an otherwise empty extraction deserves a minimal
// placeholder requirement.
func HasObligation(text string) bool {
	return obligationPattern.MatchString(text)
}
