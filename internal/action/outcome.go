package action

import "github.com/MrJamesThe3rd/dashboard/internal/invoice"

const InvoicesPath = "/dashboard/invoices"

type Kind int

const (
	// KindState asks the caller to re-render the form with State.
	KindState Kind = iota
	// KindRedirect asks the caller to navigate to Location.
	KindRedirect
)

type Outcome struct {
	Kind     Kind
	State    State
	Location string
}

// State is what a form renders from. The zero State means nothing was submitted yet.
type State struct {
	Errors  invoice.FieldErrors `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

func Redirect(location string) Outcome {
	return Outcome{Kind: KindRedirect, Location: location}
}

func Rerender(s State) Outcome {
	return Outcome{Kind: KindState, State: s}
}

// FatalError is an unrecoverable action failure. Message is safe to show to users.
type FatalError struct {
	Message string
	Err     error
}

func (e *FatalError) Error() string { return e.Message }

func (e *FatalError) Unwrap() error { return e.Err }
