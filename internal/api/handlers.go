package api

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/appointment"
	"github.com/hackgods/saude-connect/internal/availability"
	"github.com/hackgods/saude-connect/internal/patient"
	"github.com/hackgods/saude-connect/internal/refdata"
	"github.com/hackgods/saude-connect/internal/session"
)

func loginHandler(sessions *session.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}

		res, err := sessions.Login(r.Context(), req.NationalID, req.BirthDate)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}

		writeOK(w, http.StatusOK, envelope{
			"user_exists":  res.UserExists,
			"has_bookings": res.HasBookings,
			"user":         res.User,
			"bookings":     res.Bookings,
		})
	}
}

func updateUserHandler(users *patient.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateUserRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		// validated as a uuid above
		userID := uuid.MustParse(req.UserID)

		user, err := users.UpdateProfile(r.Context(), userID, patient.ProfileUpdate{
			FullName:   req.FullName,
			Phone:      req.Phone,
			Email:      req.Email,
			HealthCard: req.HealthCard,
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"user": user})
	}
}

func getUserHandler(users *patient.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		user, err := users.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"user": user})
	}
}

func listCitiesHandler(refs *refdata.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, http.StatusOK, envelope{"cities": refs.ListCities(r.Context())})
	}
}

func listClinicsHandler(refs *refdata.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cityID, err := intParam(r, "cityID")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		clinics, err := refs.ListClinics(r.Context(), cityID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"ubs": clinics})
	}
}

func listSpecialtiesHandler(refs *refdata.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := intParam(r, "ubsID")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		specs, err := refs.ListSpecialties(r.Context(), clinicID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"services": specs})
	}
}

func listDoctorsHandler(refs *refdata.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := intParam(r, "ubsID")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		specialtyID, err := intParam(r, "serviceID")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		doctors, err := refs.ListDoctors(r.Context(), clinicID, specialtyID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"doctors": doctors})
	}
}

func selectionHandler(refs *refdata.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sel refdata.Selection
		if err := decode(r, &sel); err != nil {
			writeError(w, r, logger, err)
			return
		}
		sel, opts := refs.Cascade(r.Context(), sel)
		writeOK(w, http.StatusOK, envelope{
			"selection": sel,
			"complete":  sel.Complete(),
			"options":   opts,
		})
	}
}

func availableDatesHandler(calc *availability.Calculator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AvailableDatesRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		dates, err := calc.AvailableDates(r.Context(), availability.Query{
			ClinicID:    req.ClinicID,
			SpecialtyID: req.SpecialtyID,
			Doctor:      req.Doctor,
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"dates": dates})
	}
}

func createAppointmentHandler(bookings *appointment.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointment.CreateRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		b, err := bookings.Create(r.Context(), req)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusCreated, envelope{"appointment": b})
	}
}

func listUserAppointmentsHandler(bookings *appointment.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuidParam(r, "userID")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		list, err := bookings.ListByUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"appointments": list})
	}
}

func cancelAppointmentHandler(bookings *appointment.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		b, err := bookings.Cancel(r.Context(), id)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"appointment": b})
	}
}
