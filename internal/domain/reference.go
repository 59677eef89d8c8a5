package domain

// Column names shared by every source and sink.
const (
	ColState      = "State"
	ColCounty     = "County Name"
	ColFIPSState  = "FIPS State"
	ColFIPSCounty = "FIPS County"
	ColGEOID      = "GEOID"
	ColAreaMi2    = "area mi2"
	ColAreaKm2    = "area km2"
)

// FIPSEntry is one row of the FIPS lookup table.
type FIPSEntry struct {
	Key  Key
	FIPS FIPS
}

// BoundingBox is one row of the canonical county bounding-box table.
type BoundingBox struct {
	Key     Key
	FIPS    FIPS
	GEOID   string
	AreaMi2 float64
	AreaKm2 float64
}

// Reference resolves FIPS codes and free-form names to canonical keys and
// carries the area normalisers.
type Reference struct {
	byFIPS    map[FIPS]Key
	byName    map[Key]Key
	boxes     []BoundingBox
	boxByKey  map[Key]BoundingBox
	boxByFIPS map[FIPS]BoundingBox
}

// NewReference indexes the FIPS lookup and bounding boxes. The lookup wins
// when both map the same code.
func NewReference(lookup []FIPSEntry, boxes []BoundingBox) *Reference {
	r := &Reference{
		byFIPS:    make(map[FIPS]Key, len(lookup)),
		byName:    make(map[Key]Key, len(lookup)+len(boxes)),
		boxes:     boxes,
		boxByKey:  make(map[Key]BoundingBox, len(boxes)),
		boxByFIPS: make(map[FIPS]BoundingBox, len(boxes)),
	}
	for _, b := range boxes {
		r.boxByKey[b.Key] = b
		r.boxByFIPS[b.FIPS] = b
		r.byName[nameKey(b.Key.State, b.Key.County)] = b.Key
	}
	for _, e := range lookup {
		r.byFIPS[e.FIPS] = e.Key
		if _, ok := r.byName[nameKey(e.Key.State, e.Key.County)]; !ok {
			r.byName[nameKey(e.Key.State, e.Key.County)] = e.Key
		}
	}
	return r
}

func nameKey(state, county string) Key {
	return Key{State: StateName(state), County: NormalizeCountyName(county)}
}

// KeyForFIPS resolves a code through the FIPS lookup table.
func (r *Reference) KeyForFIPS(f FIPS) (Key, bool) {
	k, ok := r.byFIPS[f]
	return k, ok
}

// Resolve maps a state (name or abbreviation) and county name to the
// canonical key. When no canonical spelling exists the normalised key is
// returned with ok=false.
func (r *Reference) Resolve(state, county string) (Key, bool) {
	nk := nameKey(state, county)
	if k, ok := r.byName[nk]; ok {
		return k, true
	}
	return nk, false
}

// Box returns the bounding box for a canonical key.
func (r *Reference) Box(k Key) (BoundingBox, bool) {
	b, ok := r.boxByKey[Key{State: k.State, County: k.County}]
	return b, ok
}

// BoxForFIPS returns the bounding box for a code.
func (r *Reference) BoxForFIPS(f FIPS) (BoundingBox, bool) {
	b, ok := r.boxByFIPS[f]
	return b, ok
}

// Boxes returns the bounding boxes in file order.
func (r *Reference) Boxes() []BoundingBox { return r.boxes }

// Area returns the county area in square miles, NaN when unknown.
func (r *Reference) Area(k Key) float64 {
	if b, ok := r.Box(k); ok {
		return b.AreaMi2
	}
	return nan()
}

// BaseTable renders the bounding boxes as the table every dataset is
// joined onto.
func (r *Reference) BaseTable() *Table {
	t := NewTable("bounding_boxes", ColAreaMi2, ColAreaKm2)
	t.AddLabel(ColFIPSState)
	t.AddLabel(ColFIPSCounty)
	t.AddLabel(ColGEOID)
	for _, b := range r.boxes {
		t.Set(b.Key, ColAreaMi2, b.AreaMi2)
		t.Set(b.Key, ColAreaKm2, b.AreaKm2)
		t.SetLabel(b.Key, ColFIPSState, b.FIPS.State)
		t.SetLabel(b.Key, ColFIPSCounty, b.FIPS.County)
		t.SetLabel(b.Key, ColGEOID, b.GEOID)
	}
	t.SortByKey()
	return t
}
