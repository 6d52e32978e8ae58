package api

import (
	"errors"

	"chainboard/internal/engine"
	"chainboard/internal/models"
)

// PageKind enumerates the dashboard pages. Dispatch is an exhaustive switch
// over this type, one render function per page, instead of comparing
// selected labels.
type PageKind string

const (
	PageHome        PageKind = "home"
	PageDashboard   PageKind = "dashboard"
	PageOverview    PageKind = "overview"
	PageProducts    PageKind = "products"
	PageSuppliers   PageKind = "suppliers"
	PageLogistics   PageKind = "logistics"
	PageCustomers   PageKind = "customers"
	PageDiagnostics PageKind = "diagnostics"
)

var pageTitles = map[PageKind]string{
	PageHome:        "Advanced Statistics — Supply Chain Dashboard",
	PageDashboard:   "Executive Summary",
	PageOverview:    "Data Overview",
	PageProducts:    "Products — Top Revenue Drivers",
	PageSuppliers:   "Suppliers — Lead Time & Defects",
	PageLogistics:   "Logistics — Modes, Carriers & Costs",
	PageCustomers:   "Customers — Segments & Revenue",
	PageDiagnostics: "Diagnostics",
}

func ParsePageKind(s string) (PageKind, bool) {
	k := PageKind(s)
	_, ok := pageTitles[k]
	return k, ok
}

// NeedsData reports whether the page renders against a loaded dataset.
// Only Home works without one.
func (k PageKind) NeedsData() bool { return k != PageHome }

const homeMarkdown = `Use the sidebar to **load your dataset** and navigate the pages.

**Research Questions**
- RQ1: Which product categories or SKUs contribute most to total revenue?
- RQ2: Which suppliers deliver poor quality or have the longest delays?
- RQ3: How do logistics decisions (mode, route, carrier) influence cost and time?
- RQ4: Which customer segments bring the highest recurring sales?

Once your data loads, go to **Dashboard** to see KPIs and a quick overview.`

type pageParams struct {
	topN        int
	previewRows int
}

// renderPage builds the view model for one page against the current
// snapshot. snap is nil only for Home. Missing-role errors degrade to
// notices; nothing here fails the page.
func renderPage(kind PageKind, snap *snapshot, p pageParams) models.Page {
	page := models.Page{Page: string(kind), Title: pageTitles[kind]}
	if snap != nil {
		page.DatasetID = snap.ID.String()
	}

	switch kind {
	case PageHome:
		page.Widgets = append(page.Widgets, models.Widget{Kind: "markdown", Markdown: homeMarkdown})
	case PageDashboard:
		renderDashboard(&page, snap)
	case PageOverview:
		renderOverview(&page, snap, p.previewRows)
	case PageProducts:
		renderProducts(&page, snap, p.topN)
	case PageSuppliers:
		renderSuppliers(&page, snap)
	case PageLogistics:
		renderLogistics(&page, snap)
	case PageCustomers:
		renderCustomers(&page, snap)
	case PageDiagnostics:
		renderDiagnostics(&page, snap)
	}
	return page
}

func renderDashboard(page *models.Page, snap *snapshot) {
	kpis := engine.Summary(snap.Data, snap.Roles)
	page.Widgets = append(page.Widgets, models.Widget{Kind: "kpi_row", Title: "Executive Summary", KPIs: &kpis})

	if rev, err := engine.RevenueByProduct(snap.Data, snap.Roles, 20); err == nil {
		page.Widgets = append(page.Widgets, models.Widget{
			Kind: "bar", Title: "Revenue by Product Type / Category", Revenue: rev,
		})
	} else {
		page.Notices = append(page.Notices, "Columns for product or revenue not found.")
	}

	if carriers, err := engine.CarrierDistribution(snap.Data, snap.Roles); err == nil {
		page.Widgets = append(page.Widgets, models.Widget{
			Kind: "pie", Title: "Shipping Carrier Distribution", Carriers: carriers,
		})
	} else {
		page.Notices = append(page.Notices, notice(err))
	}
}

func renderOverview(page *models.Page, snap *snapshot, previewRows int) {
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "table", Title: "Data Preview", Preview: engine.PreviewRows(snap.Data, previewRows),
	})

	if missing := engine.MissingProfile(snap.Data); len(missing) > 0 {
		page.Widgets = append(page.Widgets, models.Widget{
			Kind: "table", Title: "Missing Values (Top 25)", Missing: missing,
		})
	} else {
		page.Notices = append(page.Notices, "No missing values detected.")
	}

	if corr, err := engine.CorrelationMatrix(snap.Data); err == nil {
		page.Widgets = append(page.Widgets, models.Widget{
			Kind: "heatmap", Title: "Correlation Heatmap (numeric columns)", Corr: corr,
		})
	} else {
		page.Notices = append(page.Notices, "Not enough numeric columns to compute correlation.")
	}
}

func renderProducts(page *models.Page, snap *snapshot, topN int) {
	topN = engine.ClampTopN(topN, 10)
	products, err := engine.RevenueByProductWithItems(snap.Data, snap.Roles, topN)
	if err != nil {
		page.Notices = append(page.Notices, "Required columns not found.")
		return
	}
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "table", Title: "Top Revenue Drivers", Products: products,
	})

	bars := make([]models.GroupRevenue, 0, len(products))
	for _, pr := range products {
		bars = append(bars, models.GroupRevenue{Name: pr.Product, Revenue: pr.TotalRevenue})
	}
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "bar", Title: "Total Revenue by Product", Revenue: bars,
	})

	// Box plot only when a price column exists; its absence is not an error.
	if boxes, err := engine.PriceDistribution(snap.Data, snap.Roles); err == nil && len(boxes) > 0 {
		page.Widgets = append(page.Widgets, models.Widget{
			Kind: "box", Title: "Price Distribution (Top SKUs)", Boxes: boxes,
		})
	}
}

func renderSuppliers(page *models.Page, snap *snapshot) {
	stats, err := engine.SupplierStats(snap.Data, snap.Roles)
	if err != nil {
		page.Notices = append(page.Notices, notice(err))
		return
	}
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "table", Title: "Supplier Lead Time & Defects", Suppliers: stats,
	})
}

func renderLogistics(page *models.Page, snap *snapshot) {
	stats, err := engine.LogisticsStats(snap.Data, snap.Roles)
	if err != nil {
		page.Notices = append(page.Notices, notice(err))
		return
	}
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "table", Title: "Carrier Cost & Time", Logistics: stats,
	})
}

func renderCustomers(page *models.Page, snap *snapshot) {
	segments, err := engine.CustomerSegmentRevenue(snap.Data, snap.Roles)
	if err != nil {
		page.Notices = append(page.Notices, "Customer segment or revenue column not found.")
		return
	}
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "table", Title: "Segment Revenue", Segments: segments,
	})
	bars := make([]models.GroupRevenue, 0, len(segments))
	for _, s := range segments {
		bars = append(bars, models.GroupRevenue{Name: s.Segment, Revenue: s.Revenue})
	}
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "bar", Title: "Revenue by Customer Segment", Revenue: bars,
	})
}

func renderDiagnostics(page *models.Page, snap *snapshot) {
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "table", Title: "Column Types", ColumnTypes: engine.ColumnTypes(snap.Data),
	})
	page.Widgets = append(page.Widgets, models.Widget{
		Kind: "markdown", Title: "Export",
		Markdown: "Download the full dataset as CSV from `/api/export`.",
	})
}

// notice converts an engine error into the user-facing message for it.
func notice(err error) string {
	var unresolved *engine.UnresolvedRoleError
	if errors.As(err, &unresolved) {
		return unresolved.Notice()
	}
	return err.Error()
}
