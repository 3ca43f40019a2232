package api

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type LoginRequest struct {
	NationalID string `json:"national_id" validate:"required"`
	BirthDate  string `json:"birth_date" validate:"required"`
}

// UpdateUserRequest merges the non-null fields into the profile.
type UpdateUserRequest struct {
	UserID     string  `json:"user_id" validate:"required,uuid"`
	FullName   *string `json:"full_name"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	HealthCard *string `json:"health_card"`
}

type AvailableDatesRequest struct {
	ClinicID    int    `json:"ubs_id" validate:"gt=0"`
	SpecialtyID int    `json:"service_id" validate:"gt=0"`
	Doctor      string `json:"doctor"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AddCityRequest struct {
	Name string `json:"name" validate:"required"`
}

type AddClinicRequest struct {
	CityID  int    `json:"city_id" validate:"gt=0"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

type AddSpecialtyRequest struct {
	ClinicID int      `json:"ubs_id" validate:"gt=0"`
	Name     string   `json:"name" validate:"required"`
	Doctors  []string `json:"doctors"`
}

type AddDoctorRequest struct {
	ClinicID    int    `json:"ubs_id" validate:"gt=0"`
	SpecialtyID int    `json:"service_id" validate:"gt=0"`
	Name        string `json:"name" validate:"required"`
}

type CreateSlotRequest struct {
	ClinicID    int    `json:"ubs_id" validate:"gt=0"`
	SpecialtyID int    `json:"service_id" validate:"gt=0"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Turn        string `json:"turn" validate:"required,oneof=morning afternoon"`
	Total       int    `json:"total" validate:"gt=0"`
}
