// internal/extraction/llm/prompt.go
package llm

import (
	"fmt"
	"strings"

	"tender-analyzer/internal/models"
)

const systemPrompt = "Tu es un expert en analyse de marchés publics français. " +
	"Tu extrais les exigences des documents de consultation et tu réponds " +
	"uniquement en JSON valide, sans aucun texte hors du JSON."

// BuildExtractionPrompt assembles the category/priority-aware extraction
// prompt for one document window.
func BuildExtractionPrompt(windowText string, docType models.DocumentType) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Analyse cet extrait d'un document de type %q et extrais toutes les exigences imposées au titulaire.", docType))
	parts = append(parts, "Catégories possibles: technical, functional, administrative, financial, legal, security, qualification, performance, other.")
	parts = append(parts, "Priorités possibles: mandatory, eliminatory, desirable, optional.")
	parts = append(parts, "Réponds exactement au format suivant:")
	parts = append(parts, `{
  "requirements": [
    {
      "category": "technical",
      "description": "texte de l'exigence",
      "priority": "mandatory",
      "confidence": 0.9,
      "keywords": ["mot1", "mot2"]
    }
  ]
}`)
	parts = append(parts, "Document:")
	parts = append(parts, windowText)

	return strings.Join(parts, "\n\n")
}

// SystemPrompt returns the fixed system instruction for extraction calls.
func SystemPrompt() string {
	return systemPrompt
}
