package ui

import (
	"github.com/desertthunder/musicat/internal/app"
	"github.com/desertthunder/musicat/internal/models"
	"github.com/desertthunder/musicat/internal/tasks"
)

// startedMsg reports the outcome of restoring the session.
type startedMsg struct{ err error }

// sectionLoadedMsg reports a finished section activation.
type sectionLoadedMsg struct {
	section app.Section
	err     error
}

// actionDoneMsg reports a finished controller call. The table is rebuilt either way.
type actionDoneMsg struct{ err error }

// formReadyMsg carries a form prepared off the update loop.
type formReadyMsg struct {
	form *formModel
	err  error
}

// formSubmittedMsg reports a modal submission for the given ticket.
type formSubmittedMsg struct {
	ticket app.Ticket
	err    error
}

// choicesMsg carries the collections offered by the add-to-collection picker.
type choicesMsg struct {
	trackID     int
	collections []models.Collection
	err         error
}

// confirmRequestMsg asks the user a yes/no question; the answer goes to reply.
type confirmRequestMsg struct {
	prompt string
	reply  chan<- bool
}

type notifyMsg struct{ err error }

type informMsg struct{ text string }

type signedOutMsg struct{}

type progressUpdateMsg tasks.ProgressUpdate

type exportCompleteMsg struct {
	result *tasks.ExportResult
	err    error
}
