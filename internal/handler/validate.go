package handler

import (
	"fmt"

	"github.com/erd-lab/procatalog/dao/model"
)

// checkItemLists rejects malformed {name, link} sequences. Links are
// free-form and may be empty, item names may not.
func checkItemLists(lists ...model.ItemList) error {
	for _, list := range lists {
		for i, item := range list {
			if item.Name == "" {
				return fmt.Errorf("item %d has an empty name", i)
			}
		}
	}
	return nil
}

func checkKanbanStatus(s model.KanbanStatus) error {
	if !s.Valid() {
		return fmt.Errorf("unknown kanban status %q", s)
	}
	return nil
}

func checkCountryCode(code string) error {
	if len(code) != 2 {
		return fmt.Errorf("country code must be exactly 2 characters, got %q", code)
	}
	return nil
}
