package refdata

// Seed returns the built-in reference tree used while the reference
// collection is empty. Specialty ids are shared across clinics: the same id
// names the same specialty wherever it is offered.
func Seed() []City {
	return []City{
		{
			ID:   1,
			Name: "São Paulo",
			Clinics: []Clinic{
				{
					ID:      1,
					Name:    "UBS Vila Madalena",
					Address: "Rua Harmonia, 123 - Vila Madalena",
					Specialties: []Specialty{
						{ID: 1, Name: "Clínica Geral", Doctors: []string{"Dr. João Silva", "Dra. Maria Santos"}},
						{ID: 2, Name: "Cardiologia", Doctors: []string{"Dr. Carlos Oliveira", "Dra. Ana Rodrigues"}},
						{ID: 3, Name: "Pediatria", Doctors: []string{"Dra. Isabela Ramos", "Dr. Daniel Correia"}},
					},
				},
				{
					ID:      2,
					Name:    "UBS Jardins",
					Address: "Av. Paulista, 456 - Jardins",
					Specialties: []Specialty{
						{ID: 1, Name: "Clínica Geral", Doctors: []string{"Dr. Pedro Costa", "Dra. Fernanda Alves"}},
						{ID: 4, Name: "Dermatologia", Doctors: []string{"Dra. Fernanda Alves", "Dr. Marcos Pereira"}},
						{ID: 5, Name: "Ginecologia", Doctors: []string{"Dra. Luciana Martins", "Dra. Patrícia Gomes"}},
					},
				},
				{
					ID:      3,
					Name:    "UBS Mooca",
					Address: "Rua da Mooca, 789 - Mooca",
					Specialties: []Specialty{
						{ID: 1, Name: "Clínica Geral", Doctors: []string{"Dr. Roberto Lima", "Dra. Carla Ferreira"}},
						{ID: 6, Name: "Ortopedia", Doctors: []string{"Dr. Thiago Moreira", "Dr. Leonardo Cardoso"}},
						{ID: 7, Name: "Neurologia", Doctors: []string{"Dr. Eduardo Santos", "Dra. Beatriz Costa"}},
					},
				},
			},
		},
		{
			ID:   2,
			Name: "Rio de Janeiro",
			Clinics: []Clinic{
				{
					ID:      4,
					Name:    "UBS Copacabana",
					Address: "Av. Atlântica, 321 - Copacabana",
					Specialties: []Specialty{
						{ID: 1, Name: "Clínica Geral", Doctors: []string{"Dr. André Barbosa", "Dra. Renata Silva"}},
						{ID: 2, Name: "Cardiologia", Doctors: []string{"Dr. Felipe Rocha", "Dra. Camila Dias"}},
						{ID: 8, Name: "Oftalmologia", Doctors: []string{"Dr. Ricardo Almeida", "Dr. Gustavo Nunes"}},
					},
				},
				{
					ID:      5,
					Name:    "UBS Ipanema",
					Address: "Rua Visconde de Pirajá, 654 - Ipanema",
					Specialties: []Specialty{
						{ID: 1, Name: "Clínica Geral", Doctors: []string{"Dra. Priscila Lopes", "Dra. Larissa Teixeira"}},
						{ID: 9, Name: "Psiquiatria", Doctors: []string{"Dr. Rodrigo Pinto", "Dra. Vanessa Araújo"}},
						{ID: 10, Name: "Urologia", Doctors: []string{"Dr. Fábio Nascimento", "Dr. Henrique Vieira"}},
					},
				},
			},
		},
		{
			ID:   3,
			Name: "Belo Horizonte",
			Clinics: []Clinic{
				{
					ID:      6,
					Name:    "UBS Savassi",
					Address: "Rua Pernambuco, 987 - Savassi",
					Specialties: []Specialty{
						{ID: 1, Name: "Clínica Geral", Doctors: []string{"Dr. Bruno Machado", "Dra. Cristina Melo"}},
						{ID: 3, Name: "Pediatria", Doctors: []string{"Dr. Paulo Mendes", "Dra. Juliana Souza"}},
						{ID: 4, Name: "Dermatologia", Doctors: []string{"Dr. Marcos Pereira", "Dra. Fernanda Alves"}},
					},
				},
			},
		},
	}
}
