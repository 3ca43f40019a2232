package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/admin"
	"github.com/hackgods/saude-connect/internal/appointment"
	"github.com/hackgods/saude-connect/internal/availability"
	"github.com/hackgods/saude-connect/internal/refdata"
)

func adminLoginHandler(auth *admin.Authenticator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		sess, err := auth.Login(req.Username, req.Password)
		if err != nil {
			logger.Warn("admin login failed", zap.String("username", req.Username))
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{
			"admin":      sess.Admin,
			"token":      sess.Token,
			"expires_at": sess.ExpiresAt,
		})
	}
}

// adminListAppointmentsHandler lists every booking with its owner, oldest
// first.
func adminListAppointmentsHandler(bookings *appointment.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := bookings.ListAll(r.Context())
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"appointments": list})
	}
}

func adminSetStatusHandler(bookings *appointment.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		var req SetStatusRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		b, err := bookings.SetStatus(r.Context(), id, appointment.Status(req.Status))
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		if p, ok := AdminFromContext(r.Context()); ok {
			logger.Info("admin changed booking status",
				zap.String("admin", p.Username),
				zap.String("booking_id", id.String()),
				zap.String("status", req.Status),
			)
		}
		writeOK(w, http.StatusOK, envelope{"appointment": b})
	}
}

func adminStatsHandler(bookings *appointment.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := bookings.Stats(r.Context())
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, envelope{"stats": st})
	}
}

func adminTreeHandler(refs *refdata.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, http.StatusOK, envelope{"cities": refs.Tree(r.Context())})
	}
}

func adminAddCityHandler(refs *refdata.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddCityRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		city, err := refs.AddCity(r.Context(), req.Name)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusCreated, envelope{"city": city})
	}
}

func adminAddClinicHandler(refs *refdata.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddClinicRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		clinic, err := refs.AddClinic(r.Context(), req.CityID, req.Name, req.Address)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusCreated, envelope{"ubs": clinic})
	}
}

func adminAddSpecialtyHandler(refs *refdata.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddSpecialtyRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		spec, err := refs.AddSpecialty(r.Context(), req.ClinicID, req.Name, req.Doctors)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusCreated, envelope{"service": spec})
	}
}

func adminAddDoctorHandler(refs *refdata.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddDoctorRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		if err := refs.AddDoctor(r.Context(), req.ClinicID, req.SpecialtyID, req.Name); err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusCreated, envelope{"doctor": req.Name})
	}
}

func adminListSlotsHandler(inv *availability.Inventory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, http.StatusOK, envelope{"slots": inv.List(r.Context())})
	}
}

func adminCreateSlotHandler(inv *availability.Inventory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSlotRequest
		if err := decode(r, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		entry, err := inv.Create(r.Context(), availability.SlotInventory{
			ClinicID:    req.ClinicID,
			SpecialtyID: req.SpecialtyID,
			Date:        req.Date,
			Turn:        availability.Turn(req.Turn),
			Total:       req.Total,
		})
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusCreated, envelope{"slot": entry})
	}
}

func adminDeleteSlotHandler(inv *availability.Inventory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		if err := inv.Delete(r.Context(), id); err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeOK(w, http.StatusOK, nil)
	}
}
