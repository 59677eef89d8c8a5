package dataset

import (
	"strings"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// NREL rate columns.
const (
	ColCommercialRate  = "Electric Commercial Rate"
	ColIndustrialRate  = "Electric Industrial Rate"
	ColResidentialRate = "Electric Residential Rate"
)

// EIAColumns lists the revenue, energy and customer columns of a class.
func EIAColumns(c domain.CustomerClass) (revenue, mwh, customers string) {
	title := strings.ToUpper(string(c[:1])) + string(c[1:])
	return title + " Sales Revenue", title + " Sales MWH", "No. " + title + " Customers"
}

// LoadElectric loads the rate dataset picked by the selectors: the NREL
// utility rates, or EIA sales by customer class.
func LoadElectric(dataset domain.ElectricDataset, class domain.CustomerClass, p Paths, ref *domain.Reference) ([]*domain.Table, error) {
	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	if dataset == domain.ElectricEIA {
		path, err := p.Path(SourceEIAElectric)
		if err != nil {
			return nil, err
		}
		return LoadEIAElectric(path, class, ref)
	}
	path, err := p.Path(SourceNRELElectric)
	if err != nil {
		return nil, err
	}
	t, err := LoadNRELElectric(path, ref)
	if err != nil {
		return nil, err
	}
	return []*domain.Table{t}, nil
}

// LoadNRELElectric averages the commercial, industrial and residential
// rates of every utility serving a county.
func LoadNRELElectric(path string, ref *domain.Reference) (*domain.Table, error) {
	f, err := readCSV(string(SourceNRELElectric), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols(domain.ColState, domain.ColCounty, "comm_rate", "ind_rate", "res_rate")
	if err != nil {
		return nil, err
	}

	agg := domain.NewAggregator(ColCommercialRate, ColIndustrialRate, ColResidentialRate)
	for _, row := range f.rows {
		k, _ := ref.Resolve(cell(row, idx[0]), cell(row, idx[1]))
		agg.Add(k,
			domain.ParseNumber(cell(row, idx[2])),
			domain.ParseNumber(cell(row, idx[3])),
			domain.ParseNumber(cell(row, idx[4])),
		)
	}

	t := domain.NewTable("electric_nrel", ColCommercialRate, ColIndustrialRate, ColResidentialRate)
	for _, k := range agg.Keys() {
		for _, c := range t.Columns() {
			t.Set(k, c, agg.Mean(k, c))
		}
	}
	t.SortByKey()
	return t, nil
}

// LoadEIAElectric sums EIA 861 customers, sales and revenue per county and
// customer class. Each row is attributed to its own county_id_fips.
func LoadEIAElectric(path string, class domain.CustomerClass, ref *domain.Reference) ([]*domain.Table, error) {
	classes, err := class.Classes()
	if err != nil {
		return nil, err
	}
	f, err := readCSV(string(SourceEIAElectric), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols("customer_class", "customers", "sales_mwh", "sales_revenue", "county_id_fips")
	if err != nil {
		return nil, err
	}

	aggs := make(map[domain.CustomerClass]*domain.Aggregator, len(classes))
	for _, c := range classes {
		aggs[c] = domain.NewAggregator("customers", "mwh", "revenue")
	}
	for _, row := range f.rows {
		agg, ok := aggs[domain.CustomerClass(strings.ToLower(cell(row, idx[0])))]
		if !ok {
			continue
		}
		code, err := domain.ParseFIPS(cell(row, idx[4]))
		if err != nil {
			continue
		}
		k, ok := ref.KeyForFIPS(code)
		if !ok {
			continue
		}
		agg.Add(k,
			domain.ParseNumber(cell(row, idx[1])),
			domain.ParseNumber(cell(row, idx[2])),
			domain.ParseNumber(cell(row, idx[3])),
		)
	}

	tables := make([]*domain.Table, 0, len(classes))
	for _, c := range classes {
		revenue, mwh, customers := EIAColumns(c)
		t := domain.NewTable("electric_eia_"+string(c), revenue, mwh, customers)
		agg := aggs[c]
		for _, k := range agg.Keys() {
			t.Set(k, revenue, agg.Sum(k, "revenue"))
			t.Set(k, mwh, agg.Sum(k, "mwh"))
			t.Set(k, customers, agg.Sum(k, "customers"))
		}
		t.SortByKey()
		tables = append(tables, t)
	}
	return tables, nil
}
