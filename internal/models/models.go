package models

// KPISummary is the Executive Summary metric row on the Dashboard page.
type KPISummary struct {
	Rows           int     `json:"rows"`
	UniqueProducts int     `json:"unique_products"`
	HasProducts    bool    `json:"has_products"`
	TotalRevenue   float64 `json:"total_revenue"`
	RevenueDisplay string  `json:"revenue_display"`
	HasRevenue     bool    `json:"has_revenue"`
	Orders         int     `json:"orders"`
}

// GroupRevenue is one bar of a revenue-by-group chart.
type GroupRevenue struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// ProductRevenue is one row of the RQ1 top-products table.
type ProductRevenue struct {
	Product      string  `json:"product"`
	TotalRevenue float64 `json:"total_revenue"`
	ItemsSold    float64 `json:"items_sold"`
}

// CarrierCount is one slice of the carrier distribution pie.
type CarrierCount struct {
	Carrier string `json:"carrier"`
	Count   int    `json:"count"`
}

// SupplierStat is one row of the RQ2 supplier table. When the lead-time or
// defect-rate column is missing the corresponding value falls back to a row
// count, mirrored by the fallback flags. A nil mean marks a group whose
// cells were all non-numeric; it renders blank, never as zero.
type SupplierStat struct {
	Supplier       string   `json:"supplier"`
	AvgLead        *float64 `json:"avg_lead"`
	LeadFallback   bool     `json:"lead_fallback,omitempty"`
	AvgDefect      *float64 `json:"avg_defect"`
	DefectFallback bool     `json:"defect_fallback,omitempty"`
	Count          int      `json:"count"`
}

// LogisticsStat is one row of the RQ3 carrier table. Nil means follow the
// same convention as SupplierStat.
type LogisticsStat struct {
	Carrier      string   `json:"carrier"`
	AvgTime      *float64 `json:"avg_time"`
	TimeFallback bool     `json:"time_fallback,omitempty"`
	AvgCost      *float64 `json:"avg_cost"`
	CostFallback bool     `json:"cost_fallback,omitempty"`
	Count        int      `json:"count"`
}

// SegmentRevenue is one row of the RQ4 customer-segment table.
type SegmentRevenue struct {
	Segment string  `json:"segment"`
	Revenue float64 `json:"revenue"`
}

// MissingCount is one row of the missing-values profile on Data Overview.
type MissingCount struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// Correlation is the numeric-column Pearson matrix for the heatmap.
// Cells[i][j] correlates Columns[i] with Columns[j].
type Correlation struct {
	Columns []string    `json:"columns"`
	Cells   [][]float64 `json:"cells"`
}

// BoxStats is a five-number summary of one product's prices, enough to
// draw a box plot without shipping raw rows.
type BoxStats struct {
	Product string  `json:"product"`
	N       int     `json:"n"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
}

// ColumnType is one row of the Diagnostics dtype listing.
type ColumnType struct {
	Column  string `json:"column"`
	Type    string `json:"type"`
	Missing int    `json:"missing"`
}

// Preview is a raw head-N slice of the dataset for the Data Overview table.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total_rows"`
}

// Widget is one renderable block of a page. Kind selects which payload
// field is populated; the client picks the chart component from it.
type Widget struct {
	Kind  string `json:"kind"` // kpi_row | table | bar | pie | box | heatmap | markdown
	Title string `json:"title"`

	KPIs        *KPISummary      `json:"kpis,omitempty"`
	Revenue     []GroupRevenue   `json:"revenue,omitempty"`
	Products    []ProductRevenue `json:"products,omitempty"`
	Carriers    []CarrierCount   `json:"carriers,omitempty"`
	Suppliers   []SupplierStat   `json:"suppliers,omitempty"`
	Logistics   []LogisticsStat  `json:"logistics,omitempty"`
	Segments    []SegmentRevenue `json:"segments,omitempty"`
	Missing     []MissingCount   `json:"missing,omitempty"`
	Corr        *Correlation     `json:"corr,omitempty"`
	Boxes       []BoxStats       `json:"boxes,omitempty"`
	ColumnTypes []ColumnType     `json:"column_types,omitempty"`
	Preview     *Preview         `json:"preview,omitempty"`
	Markdown    string           `json:"markdown,omitempty"`
}

// Page is the full view model for one dashboard page.
type Page struct {
	Page      string   `json:"page"`
	Title     string   `json:"title"`
	DatasetID string   `json:"dataset_id,omitempty"`
	Widgets   []Widget `json:"widgets"`
	Notices   []string `json:"notices,omitempty"`
}

// LoadResult is the response body of a successful POST /api/load.
type LoadResult struct {
	DatasetID string `json:"dataset_id"`
	Source    string `json:"source"`
	Rows      int    `json:"rows"`
	Columns   int    `json:"columns"`
}
