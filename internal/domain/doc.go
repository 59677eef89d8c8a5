// Package domain models the county feature table and the conventions of the
// public datasets joined into it.
//
// # Join Key
//
// Every dataset is reduced to a [Key] before it is joined: the full state
// name and the county name as spelled in the FIPS lookup table, e.g.
//
//	Key{State: "Alabama", County: "Autauga"}
//
// Datasets that only carry FIPS codes are resolved to a Key through the
// lookup table ([Reference.KeyForFIPS]). Datasets that carry names are
// matched after [NormalizeCountyName] strips the " County" / " Parish"
// suffixes, periods and diacritics ("Doña Ana County" -> "Dona Ana").
//
// # FIPS Conventions
//
// State codes are two digits, county codes three, both zero padded:
//
//	"01" + "001"  ->  Autauga County, Alabama
//
// Sources disagree on how they render the combined five-digit code. All of
// the following resolve to the same [FIPS]:
//
//	"01001"            bounding boxes, EIA (as text)
//	"1001"             EIA (as integer)
//	"1001.0"           MIT election lab (float column)
//	"0500000US01001"   census GEO_ID ("Geography" column)
//
// # Census Table Conventions
//
// data.census.gov exports carry two header rows: machine codes on the first
// row and "!!"-delimited labels on the second. The label row is the header
// we use. The trailing column is an empty artefact of the export and is
// dropped. Numeric cells may contain thousands separators ("1,234") and
// annotation markers ("(X)", "-", "N"); the former are stripped, the latter
// become NaN.
//
// # Missing Values
//
// Numeric columns are float64 with NaN marking a missing value, the same
// semantics an outer join produces for keys that appear in only one side.
// Sinks render NaN as an empty cell.
package domain
