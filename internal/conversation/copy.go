package conversation

import "fmt"

// Bot copy. The product speaks Spanish to its visitors.
const (
	greetingText        = "Bienvenido a GForma. Soy tu consultor de formación inteligente."
	showExampleOption   = "Ver ejemplo de funcionamiento"
	showExampleUserText = "Ver ejemplo"
	exampleText         = "Ejemplo: Una empresa 'TechSolutions' del sector 'Tecnología' necesita formación en 'Ventas B2B' para su equipo comercial. Nosotros generamos el temario y asignamos el formador.\n\n¡Empecemos! ¿Cuál es el nombre de tu empresa?"
	restartText         = "Sesión reiniciada. Bienvenido de nuevo a GForma. ¿Cuál es el nombre de tu empresa?"

	sectorRejectedText  = "Disculpa. ¿Podrías indicarme a qué sector pertenece vuestra actividad?"
	sectorAcceptedText  = "Perfecto. ¿Para qué departamento o colectivo es la formación y cuál es el reto principal que queréis resolver?"
	vagueChallengeText  = "Entiendo que buscáis formación, pero necesito ser un poco más preciso para ayudarte. ¿Podrías detallar un poco más el reto? (Ej: 'El equipo de ventas necesita cerrar más acuerdos')"
	useSyllabusText     = "Pulsa el botón para generar la propuesta de temario o reinicia la conversación."
	syllabusHeaderText  = "Propuesta de Temario GForma:"
	contactRequestText  = "Para finalizar y guardar esta propuesta, por favor facilita: Nombre, Email y Teléfono."
	contactInvalidText  = "Por favor, necesito al menos un email o teléfono válido para poder enviarte la información."
	completedText       = "¡Registro completado! Hemos guardado tu solicitud en GForma. Recibirás noticias pronto."
	defaultDepartment   = "Equipo General"
	sectorConfirmFormat = "He identificado que %s pertenece al sector %s, ¿es correcto?"
)

func sectorConfirmText(company, sector string) string {
	return fmt.Sprintf(sectorConfirmFormat, company, sector)
}

func sectorUnknownText(company string) string {
	return fmt.Sprintf("Gracias. ¿A qué sector pertenece %s?", company)
}

func sectorManualText(sector string) string {
	return fmt.Sprintf("Entendido, sector %s. ¿Para qué departamento es la formación y cuál es el reto específico?", sector)
}

func teacherMatchText(department, teacherID string) string {
	return fmt.Sprintf("He registrado el reto para el dpto. de %s.\nTenemos especialistas disponibles (ID %s).\n\n¿Quieres que prepare una propuesta de contenidos?", department, teacherID)
}

func noTeacherText(challenge, department string) string {
	return fmt.Sprintf("He registrado el reto: \"%s\" para %s.\nAunque no tengo un formador exacto para esto ahora mismo, puedo diseñarte el temario.", challenge, department)
}
