// Package model defines data structures for the lead assistant.
package model

// Step identifies where a conversation is in the scripted flow.
type Step string

const (
	StepInit                           Step = "init"
	StepAwaitingCompanyName            Step = "awaiting_company_name"
	StepAwaitingSectorConfirmation     Step = "awaiting_sector_confirmation"
	StepAwaitingSectorManual           Step = "awaiting_sector_manual"
	StepAwaitingDepartmentAndChallenge Step = "awaiting_department_and_challenge"
	StepOfferingSyllabus               Step = "offering_syllabus"
	StepAwaitingContactInfo            Step = "awaiting_contact_info"
	StepCompleted                      Step = "completed"
)

// ConversationState is the mutable state of one conversation. It has a
// single writer, the conversation engine that owns it.
type ConversationState struct {
	Step              Step   `json:"step"`
	CompanyName       string `json:"company_name,omitempty"`
	Sector            string `json:"sector,omitempty"`
	Department        string `json:"department,omitempty"`
	Challenge         string `json:"challenge,omitempty"`
	GeneratedSyllabus string `json:"generated_syllabus,omitempty"`
}

// InitialState returns the state every conversation starts from.
func InitialState() ConversationState {
	return ConversationState{Step: StepInit}
}

// Action is a non-text trigger the visitor can fire (a button in the UI).
type Action string

const (
	ActionShowExample      Action = "show_example"
	ActionGenerateSyllabus Action = "generate_syllabus"
	ActionRestart          Action = "restart"
)
