package refdata

import "github.com/hackgods/saude-connect/internal/apperr"

var (
	ErrCityNotFound      = apperr.New(apperr.ErrNotFound, "city not found")
	ErrClinicNotFound    = apperr.New(apperr.ErrNotFound, "clinic not found")
	ErrSpecialtyNotFound = apperr.New(apperr.ErrNotFound, "specialty not offered at this clinic")
	ErrDoctorNotFound    = apperr.New(apperr.ErrNotFound, "doctor not listed for this specialty")
	ErrNameRequired      = apperr.New(apperr.ErrValidation, "name is required")
	ErrDuplicateName     = apperr.New(apperr.ErrConflict, "an entry with this name already exists")
)

// City is the root of the reference tree. Each clinic, specialty and doctor
// list belongs to exactly one parent.
type City struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Clinics []Clinic `json:"clinics"`
}

type Clinic struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Specialties []Specialty `json:"specialties"`
}

type Specialty struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Doctors []string `json:"doctors"`
}

type CitySummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ClinicSummary struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type SpecialtySummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Resolved is the name snapshot of a full selection chain.
type Resolved struct {
	CityID        int    `json:"city_id"`
	CityName      string `json:"city_name"`
	ClinicID      int    `json:"clinic_id"`
	ClinicName    string `json:"clinic_name"`
	ClinicAddress string `json:"clinic_address"`
	SpecialtyID   int    `json:"specialty_id"`
	SpecialtyName string `json:"specialty_name"`
	DoctorName    string `json:"doctor_name"`
}
