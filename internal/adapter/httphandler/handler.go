package httphandler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/internal/core/port"
)

// POST v1/inventory/import CSV body (202 Accepted, 400 Bad request)
// POST v1/reports (201 Created, 503 Service unavailable)
// GET v1/products/{productID} (200 OK, 404 Not found)
// GET v1/inventory (200 OK)

type ImportHandler struct {
	importer port.InventoryImporter
}

func RegisterImport(mux *http.ServeMux, importer port.InventoryImporter) {
	h := ImportHandler{importer}
	mux.Handle("POST /v1/inventory/import", AllowCSV(http.HandlerFunc(h.PostImport)))
}

func (h ImportHandler) PostImport(w http.ResponseWriter, r *http.Request) {
	const op = "ImportHandler.PostImport"
	log := slog.With("op", op)

	rows, err := parseCSVRows(r.Body)
	if err != nil {
		http.Error(w, "invalid CSV data", http.StatusBadRequest)
		log.Warn("failed to parse CSV", "err", err)
		return
	}

	stats, err := h.importer.ImportInventory(r.Context(), rows)
	if err != nil {
		http.Error(
			w, "failed to import inventory", http.StatusServiceUnavailable,
		)
		log.Error("failed to import inventory", "err", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, importResponse{
		Imported:  stats.Imported,
		Skipped:   stats.Skipped,
		LowStock:  stats.LowStock,
		ReportKey: stats.ReportKey,
	}, log)

	log.Info("import accepted",
		"imported", stats.Imported, "skipped", stats.Skipped)
}

// parseCSVRows maps each CSV record onto the header columns. Records
// with a deviating field count fail the whole upload: a broken file is
// a caller mistake, unlike a malformed row value which the core skips.
func parseCSVRows(body io.Reader) ([]domain.ImportedRow, error) {
	reader := csv.NewReader(body)

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	var rows []domain.ImportedRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		row := make(domain.ImportedRow, len(header))
		for i, field := range header {
			row[field] = record[i]
		}
		rows = append(rows, row)
	}
}

type ReportsHandler struct {
	generator port.ReportGenerator
}

func RegisterReports(mux *http.ServeMux, generator port.ReportGenerator) {
	h := ReportsHandler{generator}
	mux.HandleFunc("POST /v1/reports", h.PostReport)
}

func (h ReportsHandler) PostReport(w http.ResponseWriter, r *http.Request) {
	const op = "ReportsHandler.PostReport"
	log := slog.With("op", op)

	stats, err := h.generator.GenerateReport(r.Context())
	if err != nil {
		http.Error(
			w, "failed to generate report", http.StatusServiceUnavailable,
		)
		log.Error("failed to generate report", "err", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, reportResponse{
		Scanned:   stats.Scanned,
		Skipped:   stats.Skipped,
		LowStock:  stats.LowStock,
		ReportKey: stats.ReportKey,
	}, log)

	log.Info("report created", "key", stats.ReportKey)
}

type ProductsHandler struct {
	provider port.SnapshotProvider
}

func RegisterProducts(mux *http.ServeMux, provider port.SnapshotProvider) {
	h := ProductsHandler{provider}
	mux.HandleFunc("GET /v1/products/{productID}", h.GetProduct)
	mux.HandleFunc("GET /v1/inventory", h.GetInventory)
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetProduct"
	log := slog.With("op", op)

	snap, ok, err := h.provider.GetSnapshot(r.PathValue("productID"))
	if err != nil {
		http.Error(w, "failed to read product", http.StatusServiceUnavailable)
		log.Error("failed to read product", "err", err)
		return
	}
	if !ok {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, toProductResponse(snap), log)
}

func (h ProductsHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.GetInventory"
	log := slog.With("op", op)

	snaps, err := h.provider.ListSnapshots()
	if err != nil {
		http.Error(w, "failed to list inventory", http.StatusServiceUnavailable)
		log.Error("failed to list inventory", "err", err)
		return
	}

	resp := inventoryResponse{
		Total:    len(snaps),
		Products: make([]productResponse, 0, len(snaps)),
	}
	for _, s := range snaps {
		resp.Products = append(resp.Products, toProductResponse(s))
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp, log)
}

func toProductResponse(s domain.ProductSnapshot) productResponse {
	return productResponse{
		ProductID:  s.ProductID,
		Name:       s.Name,
		Category:   s.Category,
		StockCount: s.StockCount,
	}
}

func writeJSON(w http.ResponseWriter, v any, log *slog.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
