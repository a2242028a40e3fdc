package domain

type FindingKind string

const (
	FindingNewProduct       FindingKind = "new_product"
	FindingAttributeChanged FindingKind = "attribute_changed"
	FindingLowStock         FindingKind = "low_stock"
)

// A ChangeFinding is one classified, meaningful change. Snapshot holds
// the current product state for every kind; Field, OldValue and NewValue
// are set only for attribute changes, Threshold only for low stock.
type ChangeFinding struct {
	Kind      FindingKind
	Snapshot  ProductSnapshot
	Field     string
	OldValue  string
	NewValue  string
	Threshold int
}

// Classify compares an optional prior snapshot with the current one and
// returns the findings in fixed order: new product, attribute changes,
// low stock. Attribute comparison is exact string equality on name and
// category; stock and price differences are never attribute changes.
//
// A low-stock finding is emitted whenever the current stock is at or
// below the threshold, regardless of the prior stock. Suppressing
// repeats is the cooldown gate's job.
func Classify(op ChangeOp, old *ProductSnapshot, cur ProductSnapshot, threshold int) []ChangeFinding {
	var fs []ChangeFinding

	if op == OpInsert && old == nil {
		fs = append(fs, ChangeFinding{Kind: FindingNewProduct, Snapshot: cur})
	}

	if old != nil {
		if old.Name != cur.Name {
			fs = append(fs, ChangeFinding{
				Kind:     FindingAttributeChanged,
				Snapshot: cur,
				Field:    FieldProductName,
				OldValue: old.Name,
				NewValue: cur.Name,
			})
		}
		if old.Category != cur.Category {
			fs = append(fs, ChangeFinding{
				Kind:     FindingAttributeChanged,
				Snapshot: cur,
				Field:    FieldCategory,
				OldValue: old.Category,
				NewValue: cur.Category,
			})
		}
	}

	if cur.StockCount <= threshold {
		fs = append(fs, ChangeFinding{
			Kind:      FindingLowStock,
			Snapshot:  cur,
			Threshold: threshold,
		})
	}

	return fs
}
