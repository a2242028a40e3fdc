package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the wire format for timestamps (UTC, second precision).
// Parsing and formatting happen only at store and transport boundaries.
const TimeLayout = "2006-01-02T15:04:05Z"

// Canonical field names shared by all record sources.
const (
	FieldProductID     = "product_id"
	FieldProductName   = "product_name"
	FieldCategory      = "product_category"
	FieldStockCount    = "stock_count"
	FieldProductPrice  = "product_price"
	FieldLastAlertTime = "last_alert_time"
)

type AttrKind string

const (
	AttrString AttrKind = "S"
	AttrNumber AttrKind = "N"
)

// An Attr is a typed scalar wrapper carried by event images.
type Attr struct {
	Kind AttrKind
	S    string
	N    string
}

func StringAttr(s string) Attr {
	return Attr{Kind: AttrString, S: s}
}

func NumberAttr(n string) Attr {
	return Attr{Kind: AttrNumber, N: n}
}

type (
	// An EventImage is the attribute map of a mutation event,
	// before or after the change.
	EventImage map[string]Attr

	// A TableRow is one scanned inventory row of native scalars.
	TableRow map[string]any

	// An ImportedRow is one bulk-imported row of untyped string fields.
	ImportedRow map[string]string
)

// SnapshotFromEventImage normalizes a mutation-event image.
//
// Missing name and category fall back to the documented sentinels.
// A missing or non-numeric stock count rejects the record: event images
// describe a point mutation and carry no safe default.
func SnapshotFromEventImage(img EventImage) (ProductSnapshot, error) {
	var s ProductSnapshot

	id, ok := img[FieldProductID]
	if !ok || id.S == "" {
		return s, rejectEventImage(img, ErrMissingProductID)
	}
	s.ProductID = id.S

	s.Name = UnknownProductName
	if v, ok := img[FieldProductName]; ok && v.S != "" {
		s.Name = v.S
	}

	s.Category = UncategorizedCategory
	if v, ok := img[FieldCategory]; ok && v.S != "" {
		s.Category = v.S
	}

	v, ok := img[FieldStockCount]
	if !ok {
		return s, rejectEventImage(img, malformed(FieldStockCount, "required"))
	}
	n, err := parseStock(v.N)
	if err != nil {
		return s, rejectEventImage(img, err)
	}
	s.StockCount = n

	if v, ok := img[FieldLastAlertTime]; ok && v.S != "" {
		t, err := time.Parse(TimeLayout, v.S)
		if err != nil {
			return s, rejectEventImage(img, malformed(FieldLastAlertTime, v.S))
		}
		s.LastAlertTime = t
	}

	return s, nil
}

// SnapshotFromTableRow normalizes one scanned inventory row.
// A missing stock count defaults to zero.
func SnapshotFromTableRow(row TableRow) (ProductSnapshot, error) {
	var s ProductSnapshot

	id, _ := row[FieldProductID].(string)
	if id == "" {
		return s, rejectTableRow(row, ErrMissingProductID)
	}
	s.ProductID = id

	s.Name = UnknownProductName
	if v, ok := row[FieldProductName].(string); ok && v != "" {
		s.Name = v
	}

	s.Category = UncategorizedCategory
	if v, ok := row[FieldCategory].(string); ok && v != "" {
		s.Category = v
	}

	if v, ok := row[FieldStockCount]; ok && v != nil {
		n, err := stockFromScalar(v)
		if err != nil {
			return s, rejectTableRow(row, err)
		}
		s.StockCount = n
	}

	if v, ok := row[FieldProductPrice]; ok && v != nil {
		p, err := priceFromScalar(v)
		if err != nil {
			return s, rejectTableRow(row, err)
		}
		s.Price = p
		s.HasPrice = true
	}

	if v, ok := row[FieldLastAlertTime]; ok && v != nil {
		t, ok := v.(time.Time)
		if !ok {
			return s, rejectTableRow(row, malformed(FieldLastAlertTime, fmt.Sprintf("%v", v)))
		}
		s.LastAlertTime = t.UTC().Truncate(time.Second)
	}

	return s, nil
}

// SnapshotFromImportedRow normalizes one bulk-imported row,
// coercing the string fields. Imported rows are the only source
// carrying a product price. A missing stock count defaults to zero.
func SnapshotFromImportedRow(row ImportedRow) (ProductSnapshot, error) {
	var s ProductSnapshot

	if row[FieldProductID] == "" {
		return s, rejectImportedRow(row, ErrMissingProductID)
	}
	s.ProductID = row[FieldProductID]

	s.Name = UnknownProductName
	if v := row[FieldProductName]; v != "" {
		s.Name = v
	}

	s.Category = UncategorizedCategory
	if v := row[FieldCategory]; v != "" {
		s.Category = v
	}

	if v := row[FieldStockCount]; v != "" {
		n, err := parseStock(v)
		if err != nil {
			return s, rejectImportedRow(row, err)
		}
		s.StockCount = n
	}

	if v := row[FieldProductPrice]; v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil || p.IsNegative() {
			return s, rejectImportedRow(row, malformed(FieldProductPrice, v))
		}
		s.Price = p
		s.HasPrice = true
	}

	return s, nil
}

func parseStock(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, malformed(FieldStockCount, v)
	}
	return n, nil
}

func stockFromScalar(v any) (int, error) {
	switch n := v.(type) {
	case int:
		if n >= 0 {
			return n, nil
		}
	case int64:
		if n >= 0 {
			return int(n), nil
		}
	case float64:
		if n >= 0 && n == float64(int(n)) {
			return int(n), nil
		}
	case string:
		return parseStock(n)
	}
	return 0, malformed(FieldStockCount, fmt.Sprintf("%v", v))
}

func priceFromScalar(v any) (decimal.Decimal, error) {
	switch p := v.(type) {
	case decimal.Decimal:
		if !p.IsNegative() {
			return p, nil
		}
	case float64:
		if p >= 0 {
			return decimal.NewFromFloat(p), nil
		}
	case string:
		d, err := decimal.NewFromString(p)
		if err == nil && !d.IsNegative() {
			return d, nil
		}
	}
	return decimal.Decimal{}, malformed(FieldProductPrice, fmt.Sprintf("%v", v))
}

func malformed(field, value string) error {
	return fmt.Errorf("%s=%q: %w", field, value, ErrMalformedRecord)
}

func rejectEventImage(img EventImage, reason error) error {
	fields := make(map[string]string, len(img))
	for k, a := range img {
		if a.Kind == AttrNumber {
			fields[k] = a.N
			continue
		}
		fields[k] = a.S
	}
	return &RejectedRecord{Fields: fields, Reason: reason}
}

func rejectTableRow(row TableRow, reason error) error {
	fields := make(map[string]string, len(row))
	for k, v := range row {
		fields[k] = fmt.Sprintf("%v", v)
	}
	return &RejectedRecord{Fields: fields, Reason: reason}
}

func rejectImportedRow(row ImportedRow, reason error) error {
	fields := make(map[string]string, len(row))
	for k, v := range row {
		fields[k] = v
	}
	return &RejectedRecord{Fields: fields, Reason: reason}
}
