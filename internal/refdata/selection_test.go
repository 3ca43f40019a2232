package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCascadeEmptySelectionOffersCities(t *testing.T) {
	sel, opts := Cascade(Seed(), Selection{})

	assert.Equal(t, Selection{}, sel)
	assert.Len(t, opts.Cities, 3)
	assert.Empty(t, opts.Clinics)
	assert.Empty(t, opts.Specialties)
	assert.Empty(t, opts.Doctors)
	assert.False(t, sel.Complete())
}

func TestCascadeFullSelection(t *testing.T) {
	in := Selection{CityID: 2, ClinicID: 5, SpecialtyID: 9, Doctor: "Dr. Rodrigo Pinto"}
	sel, opts := Cascade(Seed(), in)

	assert.Equal(t, in, sel)
	assert.True(t, sel.Complete())
	assert.Len(t, opts.Clinics, 2)
	assert.Len(t, opts.Specialties, 3)
	assert.Equal(t, []string{"Dr. Rodrigo Pinto", "Dra. Vanessa Araújo"}, opts.Doctors)
}

func TestCascadeClearsDownstreamOfChangedCity(t *testing.T) {
	// city switched from Rio to São Paulo while the Rio clinic stayed selected
	sel, opts := Cascade(Seed(), Selection{CityID: 1, ClinicID: 5, SpecialtyID: 9, Doctor: "Dr. Rodrigo Pinto"})

	assert.Equal(t, Selection{CityID: 1}, sel)
	assert.Len(t, opts.Clinics, 3)
	assert.Empty(t, opts.Specialties)
	assert.Empty(t, opts.Doctors)
}

func TestCascadeClearsOnlyInvalidDoctor(t *testing.T) {
	sel, opts := Cascade(Seed(), Selection{CityID: 1, ClinicID: 2, SpecialtyID: 4, Doctor: "Dr. João Silva"})

	assert.Equal(t, Selection{CityID: 1, ClinicID: 2, SpecialtyID: 4}, sel)
	assert.Equal(t, []string{"Dra. Fernanda Alves", "Dr. Marcos Pereira"}, opts.Doctors)
}

func TestCascadeUnknownCity(t *testing.T) {
	sel, opts := Cascade(Seed(), Selection{CityID: 42, ClinicID: 1})

	assert.Equal(t, Selection{}, sel)
	assert.Len(t, opts.Cities, 3)
	assert.Empty(t, opts.Clinics)
}
