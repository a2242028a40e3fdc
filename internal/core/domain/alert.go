package domain

import (
	"fmt"
	"strings"
)

const AlertSubject = "Inventory Alert: Stock or Product Updates"

// ComposeAlert renders the notification text for one processing run.
// The changes section lists new-product and attribute-change findings in
// the order received; the low-stock section lists only eligible
// decisions, suppressed ones are omitted entirely. Ordering is part of
// the contract: downstream consumers parse the text.
//
// Returns false when there is nothing to report; callers must not
// invoke the notifier in that case.
func ComposeAlert(findings []ChangeFinding, decisions []AlertDecision) (AlertMessage, bool) {
	var changes []ChangeFinding
	for _, f := range findings {
		if f.Kind == FindingNewProduct || f.Kind == FindingAttributeChanged {
			changes = append(changes, f)
		}
	}

	var eligible []AlertDecision
	for _, d := range decisions {
		if d.Eligible {
			eligible = append(eligible, d)
		}
	}

	if len(changes) == 0 && len(eligible) == 0 {
		return AlertMessage{}, false
	}

	var b strings.Builder
	b.WriteString("INVENTORY ALERT\n\n")

	if len(changes) > 0 {
		b.WriteString("Change(s):\n")
		for _, f := range changes {
			writeChangeLine(&b, f)
		}
		b.WriteString("\n")
	}

	if len(eligible) > 0 {
		b.WriteString("Low Stock Items:\n")
		for _, d := range eligible {
			s := d.Finding.Snapshot
			fmt.Fprintf(&b, "- %s (ID: %s)\n", s.Name, s.ProductID)
			fmt.Fprintf(&b, "  Category: %s\n", s.Category)
			fmt.Fprintf(&b, "  Current Stock: %d (Threshold: %d)\n\n",
				s.StockCount, d.Finding.Threshold)
		}
	}

	return AlertMessage{Subject: AlertSubject, Body: b.String()}, true
}

func writeChangeLine(b *strings.Builder, f ChangeFinding) {
	s := f.Snapshot
	switch f.Kind {
	case FindingNewProduct:
		fmt.Fprintf(b, "New product added: %s (ID: %s), Category: %s, Stock: %d\n",
			s.Name, s.ProductID, s.Category, s.StockCount)
	case FindingAttributeChanged:
		fmt.Fprintf(b, "Product %s updated:\n - %s: %s -> %s\n",
			s.ProductID, f.Field, f.OldValue, f.NewValue)
	}
}
