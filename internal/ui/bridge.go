package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// bridge forwards app callbacks into the bubbletea event loop.
//
// It implements services.Notifier, app.Informer and app.Confirmer. Confirm
// blocks the calling command until the user answers in the overlay. Posting
// blocks until the event loop reads the message, so app calls that may notify
// run in commands, never inside Update.
type bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func (b *bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *bridge) post(msg tea.Msg) bool {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// Notify implements services.Notifier.
func (b *bridge) Notify(err error) { b.post(notifyMsg{err: err}) }

// Inform implements app.Informer.
func (b *bridge) Inform(text string) { b.post(informMsg{text: text}) }

// Confirm implements app.Confirmer.
func (b *bridge) Confirm(ctx context.Context, prompt string) (bool, error) {
	reply := make(chan bool, 1)
	if !b.post(confirmRequestMsg{prompt: prompt, reply: reply}) {
		return false, nil
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (b *bridge) signedOut() { b.post(signedOutMsg{}) }
