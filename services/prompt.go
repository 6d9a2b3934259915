package services

import (
	"fmt"
	"strings"

	"tecnoloc-diag/models"
	"tecnoloc-diag/providers"
)

// EquipmentInfo beschreibt Gerät und Defekt, wie der Techniker sie erfasst.
type EquipmentInfo struct {
	Name        string `json:"equipment_name"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Defect      string `json:"defect_description"`
	Category    string `json:"defect_category"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

const responseFormat = `{
  "possible_causes": ["Cause 1", "Cause 2", "Cause 3"],
  "solutions": [
    {
      "title": "Solution title",
      "steps": ["Step 1", "Step 2", "Step 3"],
      "difficulty": "Easy"
    }
  ]
}`

// BuildPrompt setzt System- und Benutzerprompt zusammen. manual und tips dürfen leer sein.
func BuildPrompt(info EquipmentInfo, manual string, tips []string) providers.Prompt {
	if strings.TrimSpace(manual) == "" {
		manual = "Not available"
	}
	history := "No previous records"
	if len(tips) > 0 {
		history = strings.Join(tips, "\n")
	}

	var sys strings.Builder
	sys.WriteString("You are the chief maintenance engineer of an equipment rental company.\n")
	sys.WriteString("Your task is to diagnose failures in industrial equipment (generators, lighting towers, compressors).\n\n")
	sys.WriteString("AVAILABLE DATA:\n")
	fmt.Fprintf(&sys, "- MANUAL: %s.\n", manual)
	fmt.Fprintf(&sys, "- HISTORY: %s.\n", history)
	fmt.Fprintf(&sys, "- CATEGORY: %s.\n\n", strings.ToUpper(info.Category))
	sys.WriteString("RULES:\n")
	sys.WriteString("1. Provide at least 3 probable causes.\n")
	sys.WriteString("2. Each solution must be a detailed plan with AT LEAST 3 clear steps.\n")
	sys.WriteString("3. Use precise technical terminology but practical instructions for the job site.\n")
	sys.WriteString("4. The 'difficulty' field must be exactly one of: 'Easy', 'Medium' or 'Hard'.\n\n")
	sys.WriteString("MANDATORY FORMAT (JSON):\n")
	sys.WriteString(responseFormat)

	user := fmt.Sprintf("EQUIPMENT: %s (%s %s)\nDEFECT: %q\nProduce a rigorous technical diagnosis and a complete action plan.",
		info.Name, info.Brand, info.Model, info.Defect)

	return providers.Prompt{
		System:      sys.String(),
		User:        user,
		ImageBase64: stripDataURL(info.ImageBase64),
	}
}

// FieldTip formatiert einen früheren Einsatz als Praxistipp.
func FieldTip(log models.MaintenanceLog) string {
	return fmt.Sprintf("Experience: %s -> Solution: %s", log.DefectDescription, log.TechnicianNotes)
}

// stripDataURL entfernt ein data:<mime>;base64,-Präfix.
func stripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if idx := strings.IndexByte(s, ','); idx > 0 {
			return s[idx+1:]
		}
	}
	return s
}
