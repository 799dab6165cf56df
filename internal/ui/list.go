package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/musicat/internal/models"
)

var _ list.Item = collectionItem{}

// collectionItem wraps [models.Collection] to implement [list.Item].
type collectionItem struct {
	collection models.Collection
}

func (i collectionItem) FilterValue() string { return i.collection.Name }
func (i collectionItem) Title() string {
	if i.collection.IsFavorite {
		return "★ " + i.collection.Name
	}
	return i.collection.Name
}
func (i collectionItem) Description() string {
	return fmt.Sprintf("%d tracks", i.collection.TracksCount)
}

// newCollectionPicker lists collections for the add-to-collection modal.
func newCollectionPicker(collections []models.Collection, width, height int) list.Model {
	items := make([]list.Item, len(collections))
	for i, c := range collections {
		items[i] = collectionItem{collection: c}
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Add to collection"
	l.SetShowHelp(false)
	return l
}
