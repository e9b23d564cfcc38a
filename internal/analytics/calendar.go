package analytics

import (
	"sort"

	"finpulse/internal/core"
)

// Calendar merges three event sources into one feed sorted ascending by
// date: every transaction in the window (income green, everything else
// red), every bill due in the window (orange), and every goal-linked
// transaction (blue, titled with the goal's name). A goal-linked
// transaction therefore appears twice, once per source.
func (e *Engine) Calendar(r core.Range) []Event {
	events := make([]Event, 0, len(e.snap.Transactions))

	for _, tx := range e.snap.Transactions {
		if !r.Contains(tx.Date) {
			continue
		}
		color := ColorRed
		if tx.Type == core.Income {
			color = ColorGreen
		}
		events = append(events, Event{
			Date:   tx.Date,
			Title:  tx.Description,
			Kind:   EventTransaction,
			Color:  color,
			Amount: tx.Amount,
			RefID:  tx.ID,
		})
		if tx.GoalID != "" {
			title := "Goal contribution"
			if g, ok := e.snap.GoalByID(tx.GoalID); ok {
				title = g.Name
			}
			events = append(events, Event{
				Date:   tx.Date,
				Title:  title,
				Kind:   EventGoal,
				Color:  ColorBlue,
				Amount: tx.Amount,
				RefID:  tx.GoalID,
			})
		}
	}

	for _, b := range e.snap.Bills {
		if !r.Contains(b.DueDate) {
			continue
		}
		events = append(events, Event{
			Date:   b.DueDate,
			Title:  b.Name,
			Kind:   EventBill,
			Color:  ColorOrange,
			Amount: b.Amount,
			RefID:  b.ID,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}
