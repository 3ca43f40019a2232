package refdata

// Selection is a possibly partial walk down the reference tree. Zero ids and
// an empty doctor mean "not chosen yet".
type Selection struct {
	CityID      int    `json:"city_id"`
	ClinicID    int    `json:"ubs_id"`
	SpecialtyID int    `json:"service_id"`
	Doctor      string `json:"doctor"`
}

// Options are the choices valid at each level below the last valid pick.
type Options struct {
	Cities      []CitySummary      `json:"cities"`
	Clinics     []ClinicSummary    `json:"ubs"`
	Specialties []SpecialtySummary `json:"services"`
	Doctors     []string           `json:"doctors"`
}

// Cascade validates sel top-down against tree. The first level that is unset
// or invalid is cleared together with everything below it; options are
// filled for each level whose parent is a valid pick.
func Cascade(tree []City, sel Selection) (Selection, Options) {
	var out Selection
	opts := Options{
		Cities:      make([]CitySummary, 0, len(tree)),
		Clinics:     []ClinicSummary{},
		Specialties: []SpecialtySummary{},
		Doctors:     []string{},
	}
	for _, c := range tree {
		opts.Cities = append(opts.Cities, CitySummary{ID: c.ID, Name: c.Name})
	}

	city, ok := findCity(tree, sel.CityID)
	if !ok {
		return out, opts
	}
	out.CityID = city.ID
	opts.Clinics = clinicSummaries(city.Clinics)

	clinic, ok := clinicInCity(city, sel.ClinicID)
	if !ok {
		return out, opts
	}
	out.ClinicID = clinic.ID
	opts.Specialties = specialtySummaries(clinic.Specialties)

	spec, ok := findSpecialty(clinic, sel.SpecialtyID)
	if !ok {
		return out, opts
	}
	out.SpecialtyID = spec.ID
	opts.Doctors = append(opts.Doctors, spec.Doctors...)

	if containsDoctor(spec.Doctors, sel.Doctor) {
		out.Doctor = sel.Doctor
	}
	return out, opts
}

// Complete reports whether every level of the selection is chosen.
func (s Selection) Complete() bool {
	return s.CityID != 0 && s.ClinicID != 0 && s.SpecialtyID != 0 && s.Doctor != ""
}
