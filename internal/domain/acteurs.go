package domain

// Role discriminates the three account kinds the backend knows about.
type Role string

const (
	RoleMedecin    Role = "medecin"
	RoleSecretaire Role = "secretaire"
	RolePatient    Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleMedecin, RoleSecretaire, RolePatient:
		return true
	}
	return false
}

// Medecin is the read-mostly doctor projection used by the directory and
// the scheduling form.
type Medecin struct {
	ID                string `json:"id"`
	Nom               string `json:"nom"`
	Prenom            string `json:"prenom"`
	Email             string `json:"email"`
	Numero            string `json:"numero,omitempty"`
	Adresse           string `json:"adresse,omitempty"`
	Specialite        string `json:"specialite"`
	NumeroLicence     string `json:"numeroLicence,omitempty"`
	AdresseCabinet    string `json:"adresseCabinet,omitempty"`
	NombrePatients    int    `json:"nombrePatients"`
	NombreSecretaires int    `json:"nombreSecretaires"`
	DateInscription   string `json:"dateInscription,omitempty"`
}

// NomComplet renders the doctor the way the lists display them.
func (m *Medecin) NomComplet() string {
	return m.Prenom + " " + m.Nom
}

type Patient struct {
	ID              string   `json:"id"`
	Nom             string   `json:"nom"`
	Prenom          string   `json:"prenom"`
	Email           string   `json:"email"`
	Numero          string   `json:"numero,omitempty"`
	DateNaissance   string   `json:"dateNaissance,omitempty"`
	Adresse         string   `json:"adresse,omitempty"`
	Sexe            string   `json:"sexe,omitempty"`
	GroupeSanguin   string   `json:"groupeSanguin,omitempty"`
	Allergies       string   `json:"allergies,omitempty"`
	Medecins        []string `json:"medecins,omitempty"`
	DateInscription string   `json:"dateInscription,omitempty"`
}

func (p *Patient) NomComplet() string {
	return p.Prenom + " " + p.Nom
}

type Secretaire struct {
	ID           string   `json:"id"`
	Nom          string   `json:"nom"`
	Prenom       string   `json:"prenom"`
	Email        string   `json:"email"`
	Numero       string   `json:"numero,omitempty"`
	Bureau       string   `json:"bureau,omitempty"`
	DateEmbauche string   `json:"dateEmbauche,omitempty"`
	Medecins     []string `json:"medecins,omitempty"`
}

// NouveauPatient is the secretary-side registration payload. Validation tags
// are checked client-side before any network call.
type NouveauPatient struct {
	Nom           string   `json:"nom" validate:"required"`
	Prenom        string   `json:"prenom" validate:"required"`
	Email         string   `json:"email" validate:"required,email"`
	Numero        string   `json:"numero" validate:"required"`
	DateNaissance string   `json:"dateNaissance" validate:"required"`
	Adresse       string   `json:"adresse"`
	MotDePasse    string   `json:"motDePasse" validate:"required,min=8"`
	Sexe          string   `json:"sexe,omitempty"`
	GroupeSanguin string   `json:"groupeSanguin,omitempty"`
	Medecins      []string `json:"Medecins,omitempty"`
}

// ProfilUpdate carries the editable profile fields for any role. Pointers
// distinguish "leave unchanged" from "set to empty".
type ProfilUpdate struct {
	Nom     *string `json:"nom,omitempty"`
	Prenom  *string `json:"prenom,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Numero  *string `json:"numero,omitempty"`
	Adresse *string `json:"adresse,omitempty"`
	Bureau  *string `json:"bureau,omitempty"`
}
