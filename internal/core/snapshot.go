package core

import "fmt"

// Snapshot is a point-in-time copy of every entity collection the analytics
// engine works over. The engine treats it as read-only; nothing here is
// mutated after construction.
type Snapshot struct {
	Transactions []Transaction `json:"transactions"`
	Accounts     []Account     `json:"accounts"`
	Goals        []Goal        `json:"goals"`
	Bills        []Bill        `json:"bills"`
	Liabilities  []Liability   `json:"liabilities"`
	Budgets      []Budget      `json:"budgets"`
	Categories   []Category    `json:"categories"`
}

func (s Snapshot) AccountByID(id string) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

func (s Snapshot) GoalByID(id string) (Goal, bool) {
	for _, g := range s.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return Goal{}, false
}

// Validate checks every entity in the snapshot. Used by the seed path; the
// analytics engine itself never rejects a snapshot.
func (s Snapshot) Validate() error {
	for i, t := range s.Transactions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %d (%s): %w", i, t.ID, err)
		}
	}
	for i, a := range s.Accounts {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("account %d (%s): %w", i, a.ID, err)
		}
	}
	for i, g := range s.Goals {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("goal %d (%s): %w", i, g.ID, err)
		}
	}
	for i, b := range s.Bills {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bill %d (%s): %w", i, b.ID, err)
		}
	}
	for i, l := range s.Liabilities {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("liability %d (%s): %w", i, l.ID, err)
		}
	}
	for i, b := range s.Budgets {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("budget %d (%s): %w", i, b.ID, err)
		}
	}
	for i, c := range s.Categories {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("category %d (%s): %w", i, c.ID, err)
		}
	}
	return nil
}
