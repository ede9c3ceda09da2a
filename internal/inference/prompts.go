package inference

import (
	"fmt"

	"github.com/gforma/lead-assistant/internal/llm"
)

// unknownSector is the sentinel the model answers with when it cannot deduce a sector.
const unknownSector = "UNKNOWN"

func sectorPrompt(companyName string) string {
	return fmt.Sprintf(`Nombre de empresa: "%s".
Identifica el sector industrial o comercial más probable de esta empresa.
Responde SOLAMENTE con el nombre del sector (ej: "Banca", "Automoción", "Retail").
Si el nombre es inventado o ambiguo y no puedes deducirlo, responde "%s".`, companyName, unknownSector)
}

func challengePrompt(userText string) string {
	return fmt.Sprintf(`Analiza este mensaje de un usuario que busca formación para su empresa: "%s".

Tareas:
1. Extrae el DEPARTAMENTO o colectivo destinatario (ej: Ventas, RRHH, Directivos, IT).
2. Extrae el RETO o necesidad concreta (ej: mejorar cierres, aprender Python, gestión del tiempo).
3. Indica si el mensaje es demasiado VAGO o CORTO para ser útil (ej: "sí", "formación", "no sé", "mejorar").`, userText)
}

func syllabusPrompt(company, sector, department, challenge string) string {
	return fmt.Sprintf(`Actúa como consultor senior de formación para GForma.
Crea un temario de 5 puntos para:
- Empresa: %s (%s)
- Departamento: %s
- Reto: %s

Formato: lista numerada del 1 al 5. Tono corporativo, directo y orientado a resultados.`, company, sector, department, challenge)
}

// challengeSchema is the structured output requested by AnalyzeChallenge.
var challengeSchema = &llm.Schema{
	Name: "challenge_analysis",
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"department": {Type: llm.TypeString, Nullable: true, Description: "Departamento o colectivo destinatario"},
		"challenge":  {Type: llm.TypeString, Nullable: true, Description: "Reto o necesidad formativa concreta"},
		"isVague":    {Type: llm.TypeBoolean, Description: "true si el mensaje es demasiado vago para extraer el reto"},
	},
	Required: []string{"isVague"},
}
