// Package lead builds lead records from finished conversations and keeps them
// for review and export.
package lead

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gforma/lead-assistant/internal/model"
)

// Sink receives finalized leads. Implementations must be safe for concurrent use.
type Sink interface {
	Capture(ctx context.Context, l model.Lead) error
}

var (
	newID = func() string { return uuid.Must(uuid.NewV7()).String() }
	now   = time.Now
)

// Finalize assembles a Lead from the conversation state and parsed contact
// details. It assigns a fresh identifier and the current UTC timestamp.
func Finalize(state model.ConversationState, name, email, phone string) model.Lead {
	return model.Lead{
		ID:           newID(),
		Date:         now().UTC().Format(time.RFC3339),
		CompanyName:  state.CompanyName,
		Sector:       state.Sector,
		Department:   state.Department,
		Challenge:    state.Challenge,
		Syllabus:     state.GeneratedSyllabus,
		ContactName:  name,
		ContactEmail: email,
		ContactPhone: phone,
	}
}
