package httphandler

type importResponse struct {
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
	LowStock  int    `json:"low_stock"`
	ReportKey string `json:"report_key"`
}

type reportResponse struct {
	Scanned   int    `json:"scanned"`
	Skipped   int    `json:"skipped"`
	LowStock  int    `json:"low_stock"`
	ReportKey string `json:"report_key"`
}

type productResponse struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"product_name"`
	Category   string `json:"product_category"`
	StockCount int    `json:"stock_count"`
}

type inventoryResponse struct {
	Total    int               `json:"total"`
	Products []productResponse `json:"products"`
}
