package engine

import (
	"errors"
	"sort"

	"chainboard/internal/models"
)

// Every query here is a pure function of (Dataset, RoleMap, params). Queries
// whose roles are unresolved return *UnresolvedRoleError instead of
// computing on a missing column; the API layer turns that into a notice.

var ErrNotEnoughNumeric = errors.New("not enough numeric columns to compute correlation")

// orderIDColumn is looked up literally, outside the role table: the orders
// KPI counts distinct order IDs when the column exists and falls back to
// the row count when it does not.
const orderIDColumn = "Order ID"

type group struct {
	key  string
	rows []int
}

// groupBy buckets row indexes by the key column's display value, preserving
// first-appearance order. Rows with a missing key are dropped.
func groupBy(keys []Value) []group {
	index := make(map[string]int)
	var groups []group
	for i, v := range keys {
		if v.Kind == Missing {
			continue
		}
		gi, ok := index[v.Str]
		if !ok {
			gi = len(groups)
			index[v.Str] = gi
			groups = append(groups, group{key: v.Str})
		}
		groups[gi].rows = append(groups[gi].rows, i)
	}
	return groups
}

// pick extracts the Number cells of a column restricted to the given rows.
func pick(col []Value, rows []int) []float64 {
	var out []float64
	for _, r := range rows {
		if col[r].Kind == Number {
			out = append(out, col[r].Num)
		}
	}
	return out
}

// Summary computes the Dashboard KPI row. Unresolved roles surface as
// Has* = false rather than an error; the KPI renders as a dash.
func Summary(ds *Dataset, roles RoleMap) models.KPISummary {
	k := models.KPISummary{Rows: ds.NumRows(), Orders: ds.NumRows()}

	if name, ok := roles.Column(RoleProduct); ok {
		if i, ok := ds.ColumnIndex(name); ok {
			k.HasProducts = true
			k.UniqueProducts = ds.DistinctCount(i)
		}
	}
	if col := roles.column(ds, RoleRevenue); col != nil {
		k.HasRevenue = true
		k.TotalRevenue = sum(numericOnly(col))
		k.RevenueDisplay = FormatCurrency(k.TotalRevenue)
	}
	if i, ok := ds.ColumnIndex(orderIDColumn); ok {
		k.Orders = ds.DistinctCount(i)
	}
	return k
}

// column fetches the cells behind a role, or nil when unresolved.
func (m RoleMap) column(ds *Dataset, r Role) []Value {
	name, ok := m[r]
	if !ok {
		return nil
	}
	return ds.ColumnByName(name)
}

func (m RoleMap) require(ds *Dataset, r Role) ([]Value, error) {
	col := m.column(ds, r)
	if col == nil {
		return nil, &UnresolvedRoleError{Role: r}
	}
	return col, nil
}

// ClampTopN bounds the RQ1 top-N parameter to the slider range, defaulting
// when unset.
func ClampTopN(n, def int) int {
	if n == 0 {
		n = def
	}
	if n < 5 {
		n = 5
	}
	if n > 30 {
		n = 30
	}
	return n
}

// RevenueByProduct groups by product, sums revenue per group and returns
// the top N groups by total, descending. Ties keep first-appearance order.
func RevenueByProduct(ds *Dataset, roles RoleMap, topN int) ([]models.GroupRevenue, error) {
	prod, err := roles.require(ds, RoleProduct)
	if err != nil {
		return nil, err
	}
	rev, err := roles.require(ds, RoleRevenue)
	if err != nil {
		return nil, err
	}

	groups := groupBy(prod)
	out := make([]models.GroupRevenue, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.GroupRevenue{Name: g.key, Revenue: sum(pick(rev, g.rows))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// RevenueByProductWithItems is the RQ1 table: per-product revenue plus
// items sold. Quantity falls back to a per-group row count when unresolved.
func RevenueByProductWithItems(ds *Dataset, roles RoleMap, topN int) ([]models.ProductRevenue, error) {
	prod, err := roles.require(ds, RoleProduct)
	if err != nil {
		return nil, err
	}
	rev, err := roles.require(ds, RoleRevenue)
	if err != nil {
		return nil, err
	}
	qty := roles.column(ds, RoleQuantity)

	groups := groupBy(prod)
	out := make([]models.ProductRevenue, 0, len(groups))
	for _, g := range groups {
		row := models.ProductRevenue{
			Product:      g.key,
			TotalRevenue: sum(pick(rev, g.rows)),
		}
		if qty != nil {
			row.ItemsSold = sum(pick(qty, g.rows))
		} else {
			row.ItemsSold = float64(len(g.rows))
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// CarrierDistribution counts rows per carrier for the Dashboard pie.
func CarrierDistribution(ds *Dataset, roles RoleMap) ([]models.CarrierCount, error) {
	carrier, err := roles.require(ds, RoleCarrier)
	if err != nil {
		return nil, err
	}
	groups := groupBy(carrier)
	out := make([]models.CarrierCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.CarrierCount{Carrier: g.key, Count: len(g.rows)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// MissingProfile reports per-column missing counts, descending, top 25.
// Columns with nothing missing are omitted entirely.
func MissingProfile(ds *Dataset) []models.MissingCount {
	var out []models.MissingCount
	for i, name := range ds.Columns {
		if n := ds.MissingCount(i); n > 0 {
			out = append(out, models.MissingCount{Column: name, Missing: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Missing > out[j].Missing })
	if len(out) > 25 {
		out = out[:25]
	}
	return out
}

// CorrelationMatrix computes pairwise Pearson correlation over the
// uniformly numeric columns, using rows where both cells are present.
// With fewer than two numeric columns the computation is skipped.
func CorrelationMatrix(ds *Dataset) (*models.Correlation, error) {
	idx := ds.NumericColumns()
	if len(idx) < 2 {
		return nil, ErrNotEnoughNumeric
	}

	corr := &models.Correlation{
		Columns: make([]string, len(idx)),
		Cells:   make([][]float64, len(idx)),
	}
	for i, ci := range idx {
		corr.Columns[i] = ds.Columns[ci]
		corr.Cells[i] = make([]float64, len(idx))
	}
	for i := range idx {
		corr.Cells[i][i] = 1
		for j := i + 1; j < len(idx); j++ {
			a, b := ds.Column(idx[i]), ds.Column(idx[j])
			var xs, ys []float64
			for r := 0; r < ds.NumRows(); r++ {
				if a[r].Kind == Number && b[r].Kind == Number {
					xs = append(xs, a[r].Num)
					ys = append(ys, b[r].Num)
				}
			}
			c := pearson(xs, ys)
			corr.Cells[i][j] = c
			corr.Cells[j][i] = c
		}
	}
	return corr, nil
}

// SupplierStats is the RQ2 table: per supplier, mean lead time and mean
// defect rate (each falling back to a row count when its column is
// missing), plus the group size. A group whose cells are all non-numeric
// gets a nil mean rather than a fake zero. Sorted by mean lead time
// descending, nil means last.
func SupplierStats(ds *Dataset, roles RoleMap) ([]models.SupplierStat, error) {
	supp, err := roles.require(ds, RoleSupplier)
	if err != nil {
		return nil, err
	}
	lead := roles.column(ds, RoleLeadTime)
	defect := roles.column(ds, RoleDefectRate)

	groups := groupBy(supp)
	out := make([]models.SupplierStat, 0, len(groups))
	for _, g := range groups {
		s := models.SupplierStat{Supplier: g.key, Count: len(g.rows)}
		if lead != nil {
			s.AvgLead = meanOrNil(pick(lead, g.rows))
		} else {
			s.AvgLead = countValue(len(g.rows))
			s.LeadFallback = true
		}
		if defect != nil {
			s.AvgDefect = meanOrNil(pick(defect, g.rows))
		} else {
			s.AvgDefect = countValue(len(g.rows))
			s.DefectFallback = true
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return sortKey(out[i].AvgLead) > sortKey(out[j].AvgLead) })
	return out, nil
}

// LogisticsStats is the RQ3 table: per carrier, mean shipping time and mean
// shipping cost with the same fallback rule, plus the group size.
func LogisticsStats(ds *Dataset, roles RoleMap) ([]models.LogisticsStat, error) {
	carrier, err := roles.require(ds, RoleCarrier)
	if err != nil {
		return nil, err
	}
	lead := roles.column(ds, RoleLeadTime)
	cost := roles.column(ds, RoleShippingCost)

	groups := groupBy(carrier)
	out := make([]models.LogisticsStat, 0, len(groups))
	for _, g := range groups {
		s := models.LogisticsStat{Carrier: g.key, Count: len(g.rows)}
		if lead != nil {
			s.AvgTime = meanOrNil(pick(lead, g.rows))
		} else {
			s.AvgTime = countValue(len(g.rows))
			s.TimeFallback = true
		}
		if cost != nil {
			s.AvgCost = meanOrNil(pick(cost, g.rows))
		} else {
			s.AvgCost = countValue(len(g.rows))
			s.CostFallback = true
		}
		out = append(out, s)
	}
	return out, nil
}

// CustomerSegmentRevenue is the RQ4 table: revenue summed per customer
// segment, descending.
func CustomerSegmentRevenue(ds *Dataset, roles RoleMap) ([]models.SegmentRevenue, error) {
	seg, err := roles.require(ds, RoleCustomerSegment)
	if err != nil {
		return nil, err
	}
	rev, err := roles.require(ds, RoleRevenue)
	if err != nil {
		return nil, err
	}
	groups := groupBy(seg)
	out := make([]models.SegmentRevenue, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.SegmentRevenue{Segment: g.key, Revenue: sum(pick(rev, g.rows))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out, nil
}

// PriceDistribution summarizes the price column per product, restricted to
// the top ten products by revenue, for the RQ1 box plot. Products whose
// price values are all non-numeric are skipped.
func PriceDistribution(ds *Dataset, roles RoleMap) ([]models.BoxStats, error) {
	price, err := roles.require(ds, RolePrice)
	if err != nil {
		return nil, err
	}
	top, err := RevenueByProduct(ds, roles, 10)
	if err != nil {
		return nil, err
	}
	focus := make(map[string]int, len(top))
	for rank, t := range top {
		focus[t.Name] = rank
	}

	prod := roles.column(ds, RoleProduct)
	byProduct := make(map[string][]float64)
	for i, v := range prod {
		if v.Kind == Missing {
			continue
		}
		if _, ok := focus[v.Str]; !ok {
			continue
		}
		if price[i].Kind == Number {
			byProduct[v.Str] = append(byProduct[v.Str], price[i].Num)
		}
	}

	var out []models.BoxStats
	for _, t := range top {
		vals := byProduct[t.Name]
		if len(vals) == 0 {
			continue
		}
		out = append(out, models.BoxStats{
			Product: t.Name,
			N:       len(vals),
			Min:     quantile(vals, 0),
			Q1:      quantile(vals, 0.25),
			Median:  quantile(vals, 0.5),
			Q3:      quantile(vals, 0.75),
			Max:     quantile(vals, 1),
		})
	}
	return out, nil
}

// PreviewRows materializes the first limit rows for the Data Overview grid.
func PreviewRows(ds *Dataset, limit int) *models.Preview {
	n := ds.NumRows()
	if limit > 0 && n > limit {
		n = limit
	}
	p := &models.Preview{
		Columns: ds.Columns,
		Rows:    make([][]string, 0, n),
		Total:   ds.NumRows(),
	}
	for i := 0; i < n; i++ {
		p.Rows = append(p.Rows, ds.Row(i))
	}
	return p
}

// ColumnTypes lists each column's inferred type and missing count for the
// Diagnostics page.
func ColumnTypes(ds *Dataset) []models.ColumnType {
	out := make([]models.ColumnType, 0, ds.NumColumns())
	for i, name := range ds.Columns {
		t := "text"
		if ds.IsNumericColumn(i) {
			t = "numeric"
		} else if ds.MissingCount(i) == ds.NumRows() {
			t = "empty"
		}
		out = append(out, models.ColumnType{Column: name, Type: t, Missing: ds.MissingCount(i)})
	}
	return out
}
