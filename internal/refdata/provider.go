package refdata

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/lock"
	"github.com/hackgods/saude-connect/internal/logging"
	"github.com/hackgods/saude-connect/internal/store"
)

const lockKey = "collection:" + store.CollectionReference

// Provider answers the selection chain lookups and applies admin changes to
// the reference tree.
type Provider struct {
	cities *store.Collection[City]
	locker lock.Locker
	logger *zap.Logger
}

func NewProvider(cities *store.Collection[City], locker lock.Locker, logger *zap.Logger) *Provider {
	if cities == nil {
		panic("refdata: collection required")
	}
	if locker == nil {
		panic("refdata: locker required")
	}
	return &Provider{cities: cities, locker: locker, logger: logging.OrNop(logger)}
}

// Tree returns the whole reference tree, falling back to the seed while the
// collection is empty.
func (p *Provider) Tree(ctx context.Context) []City {
	cities := p.cities.Load(ctx)
	if len(cities) == 0 {
		return Seed()
	}
	return cities
}

func (p *Provider) ListCities(ctx context.Context) []CitySummary {
	tree := p.Tree(ctx)
	out := make([]CitySummary, 0, len(tree))
	for _, c := range tree {
		out = append(out, CitySummary{ID: c.ID, Name: c.Name})
	}
	return out
}

func (p *Provider) ListClinics(ctx context.Context, cityID int) ([]ClinicSummary, error) {
	city, ok := findCity(p.Tree(ctx), cityID)
	if !ok {
		return nil, ErrCityNotFound
	}
	return clinicSummaries(city.Clinics), nil
}

func (p *Provider) ListSpecialties(ctx context.Context, clinicID int) ([]SpecialtySummary, error) {
	_, clinic, ok := findClinic(p.Tree(ctx), clinicID)
	if !ok {
		return nil, ErrClinicNotFound
	}
	return specialtySummaries(clinic.Specialties), nil
}

func (p *Provider) ListDoctors(ctx context.Context, clinicID, specialtyID int) ([]string, error) {
	_, clinic, ok := findClinic(p.Tree(ctx), clinicID)
	if !ok {
		return nil, ErrClinicNotFound
	}
	spec, ok := findSpecialty(clinic, specialtyID)
	if !ok {
		return nil, ErrSpecialtyNotFound
	}
	return append([]string{}, spec.Doctors...), nil
}

// Resolve checks that sel is a complete, consistent chain and returns the
// names it points at.
func (p *Provider) Resolve(ctx context.Context, sel Selection) (Resolved, error) {
	tree := p.Tree(ctx)

	city, ok := findCity(tree, sel.CityID)
	if !ok {
		return Resolved{}, ErrCityNotFound
	}
	clinic, ok := clinicInCity(city, sel.ClinicID)
	if !ok {
		return Resolved{}, ErrClinicNotFound
	}
	spec, ok := findSpecialty(clinic, sel.SpecialtyID)
	if !ok {
		return Resolved{}, ErrSpecialtyNotFound
	}
	if !containsDoctor(spec.Doctors, sel.Doctor) {
		return Resolved{}, ErrDoctorNotFound
	}

	return Resolved{
		CityID:        city.ID,
		CityName:      city.Name,
		ClinicID:      clinic.ID,
		ClinicName:    clinic.Name,
		ClinicAddress: clinic.Address,
		SpecialtyID:   spec.ID,
		SpecialtyName: spec.Name,
		DoctorName:    sel.Doctor,
	}, nil
}

// Cascade applies the selection chain to the current tree.
func (p *Provider) Cascade(ctx context.Context, sel Selection) (Selection, Options) {
	return Cascade(p.Tree(ctx), sel)
}

func (p *Provider) AddCity(ctx context.Context, name string) (CitySummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CitySummary{}, ErrNameRequired
	}

	var created CitySummary
	err := p.mutate(ctx, func(tree []City) ([]City, error) {
		next := 0
		for _, c := range tree {
			if strings.EqualFold(c.Name, name) {
				return nil, ErrDuplicateName
			}
			next = max(next, c.ID)
		}
		created = CitySummary{ID: next + 1, Name: name}
		return append(tree, City{ID: created.ID, Name: name, Clinics: []Clinic{}}), nil
	})
	if err != nil {
		return CitySummary{}, err
	}
	p.logger.Info("city added", zap.Int("city_id", created.ID), zap.String("name", name))
	return created, nil
}

func (p *Provider) AddClinic(ctx context.Context, cityID int, name, address string) (ClinicSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ClinicSummary{}, ErrNameRequired
	}

	var created ClinicSummary
	err := p.mutate(ctx, func(tree []City) ([]City, error) {
		next := 0
		for _, c := range tree {
			for _, cl := range c.Clinics {
				next = max(next, cl.ID)
			}
		}
		for i := range tree {
			if tree[i].ID != cityID {
				continue
			}
			for _, cl := range tree[i].Clinics {
				if strings.EqualFold(cl.Name, name) {
					return nil, ErrDuplicateName
				}
			}
			created = ClinicSummary{ID: next + 1, Name: name, Address: strings.TrimSpace(address)}
			tree[i].Clinics = append(tree[i].Clinics, Clinic{
				ID:          created.ID,
				Name:        created.Name,
				Address:     created.Address,
				Specialties: []Specialty{},
			})
			return tree, nil
		}
		return nil, ErrCityNotFound
	})
	if err != nil {
		return ClinicSummary{}, err
	}
	p.logger.Info("clinic added", zap.Int("city_id", cityID), zap.Int("clinic_id", created.ID))
	return created, nil
}

// AddSpecialty offers a specialty at a clinic. A name already used elsewhere
// in the tree keeps its id.
func (p *Provider) AddSpecialty(ctx context.Context, clinicID int, name string, doctors []string) (SpecialtySummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SpecialtySummary{}, ErrNameRequired
	}

	var created SpecialtySummary
	err := p.mutate(ctx, func(tree []City) ([]City, error) {
		id, next := 0, 0
		for _, c := range tree {
			for _, cl := range c.Clinics {
				for _, s := range cl.Specialties {
					next = max(next, s.ID)
					if strings.EqualFold(s.Name, name) {
						id = s.ID
					}
				}
			}
		}
		if id == 0 {
			id = next + 1
		}

		for i := range tree {
			for j := range tree[i].Clinics {
				clinic := &tree[i].Clinics[j]
				if clinic.ID != clinicID {
					continue
				}
				if _, ok := findSpecialty(*clinic, id); ok {
					return nil, ErrDuplicateName
				}
				created = SpecialtySummary{ID: id, Name: name}
				clinic.Specialties = append(clinic.Specialties, Specialty{
					ID:      id,
					Name:    name,
					Doctors: cleanNames(doctors),
				})
				return tree, nil
			}
		}
		return nil, ErrClinicNotFound
	})
	if err != nil {
		return SpecialtySummary{}, err
	}
	p.logger.Info("specialty added", zap.Int("clinic_id", clinicID), zap.Int("specialty_id", created.ID))
	return created, nil
}

func (p *Provider) AddDoctor(ctx context.Context, clinicID, specialtyID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	err := p.mutate(ctx, func(tree []City) ([]City, error) {
		for i := range tree {
			for j := range tree[i].Clinics {
				clinic := &tree[i].Clinics[j]
				if clinic.ID != clinicID {
					continue
				}
				for k := range clinic.Specialties {
					spec := &clinic.Specialties[k]
					if spec.ID != specialtyID {
						continue
					}
					if containsDoctor(spec.Doctors, name) {
						return nil, ErrDuplicateName
					}
					spec.Doctors = append(spec.Doctors, name)
					return tree, nil
				}
				return nil, ErrSpecialtyNotFound
			}
		}
		return nil, ErrClinicNotFound
	})
	if err != nil {
		return err
	}
	p.logger.Info("doctor added", zap.Int("clinic_id", clinicID), zap.Int("specialty_id", specialtyID))
	return nil
}

func (p *Provider) mutate(ctx context.Context, fn func([]City) ([]City, error)) error {
	return p.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		tree, err := p.cities.LoadForUpdate(ctx)
		if err != nil {
			return err
		}
		if len(tree) == 0 {
			tree = Seed()
		}
		if tree, err = fn(tree); err != nil {
			return err
		}
		return p.cities.Save(ctx, tree)
	})
}

func findCity(tree []City, id int) (City, bool) {
	for _, c := range tree {
		if c.ID == id {
			return c, true
		}
	}
	return City{}, false
}

func findClinic(tree []City, id int) (City, Clinic, bool) {
	for _, c := range tree {
		if cl, ok := clinicInCity(c, id); ok {
			return c, cl, true
		}
	}
	return City{}, Clinic{}, false
}

func clinicInCity(city City, id int) (Clinic, bool) {
	for _, cl := range city.Clinics {
		if cl.ID == id {
			return cl, true
		}
	}
	return Clinic{}, false
}

func findSpecialty(clinic Clinic, id int) (Specialty, bool) {
	for _, s := range clinic.Specialties {
		if s.ID == id {
			return s, true
		}
	}
	return Specialty{}, false
}

func containsDoctor(doctors []string, name string) bool {
	if name == "" {
		return false
	}
	for _, d := range doctors {
		if d == name {
			return true
		}
	}
	return false
}

func cleanNames(names []string) []string {
	out := []string{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" && !containsDoctor(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func clinicSummaries(clinics []Clinic) []ClinicSummary {
	out := make([]ClinicSummary, 0, len(clinics))
	for _, cl := range clinics {
		out = append(out, ClinicSummary{ID: cl.ID, Name: cl.Name, Address: cl.Address})
	}
	return out
}

func specialtySummaries(specs []Specialty) []SpecialtySummary {
	out := make([]SpecialtySummary, 0, len(specs))
	for _, s := range specs {
		out = append(out, SpecialtySummary{ID: s.ID, Name: s.Name})
	}
	return out
}
