package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sentinels for attributes absent from the input record.
const (
	UnknownProductName    = "Unknown Product"
	UncategorizedCategory = "Uncategorized"
)

type (
	// A ProductSnapshot is the canonical state of one product
	// at one point in time. Value object, immutable after construction.
	//
	// A zero LastAlertTime means no low-stock alert was ever issued.
	ProductSnapshot struct {
		ProductID     string
		Name          string
		Category      string
		StockCount    int
		Price         decimal.Decimal
		HasPrice      bool
		LastAlertTime time.Time
	}

	// A LowStockItem is the report projection of a low-stock snapshot.
	LowStockItem struct {
		ProductID  string
		Name       string
		StockLevel int
	}

	// A SummaryReport describes the whole inventory at one point in time.
	SummaryReport struct {
		ReportID      string
		Timestamp     time.Time
		TotalProducts int
		LowStockCount int
		LowStockItems []LowStockItem
		FullInventory []ProductSnapshot
	}
)

type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpModify ChangeOp = "MODIFY"
)

// A ChangeEvent is one mutation delivered by the event source.
// OldImage is nil for events without a prior state.
type ChangeEvent struct {
	Op       ChangeOp
	NewImage EventImage
	OldImage EventImage
}

// An AlertMessage is the rendered notification handed to the notifier.
type AlertMessage struct {
	MessageID string
	Subject   string
	Body      string
}

// ProcessStats summarizes one change-event batch for operators.
type ProcessStats struct {
	Processed int
	Skipped   int
	LowStock  int
	Alerted   int
}

// ImportStats summarizes one bulk-import run for operators.
type ImportStats struct {
	Imported  int
	Skipped   int
	LowStock  int
	ReportKey string
}

// ReportStats summarizes one report-generation run for operators.
type ReportStats struct {
	Scanned   int
	Skipped   int
	LowStock  int
	ReportKey string
}
