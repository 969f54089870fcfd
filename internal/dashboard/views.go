package dashboard

import (
	"sort"
	"time"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

// Derived views are pure functions of the loaded lists, recomputed on
// demand. No caching, no indices.

// ProchainRendezVous returns the earliest appointment strictly in the
// future that is not cancelled, or nil when none qualifies. Ordering uses
// the combined date+time instant.
func ProchainRendezVous(list []domain.RendezVous, now time.Time) *domain.RendezVous {
	var best *domain.RendezVous
	var bestAt time.Time
	for i := range list {
		r := &list[i]
		if r.Statut == domain.StatutAnnule {
			continue
		}
		at, err := r.StartsAt(now.Location())
		if err != nil {
			continue
		}
		if !at.After(now) {
			continue
		}
		if best == nil || at.Before(bestAt) {
			best = r
			bestAt = at
		}
	}
	return best
}

// Aujourdhui filters the appointments falling on now's calendar day.
func Aujourdhui(list []domain.RendezVous, now time.Time) []domain.RendezVous {
	out := make([]domain.RendezVous, 0)
	for _, r := range list {
		if r.IsSameDay(now) {
			out = append(out, r)
		}
	}
	return out
}

// CompteurStatuts tallies appointments by canonical status for the
// summary tiles. Unrecognized statuses land in Autres.
type CompteurStatuts struct {
	Total     int
	EnAttente int
	Confirmes int
	Consultes int
	Annules   int
	Autres    int
}

func CompterStatuts(list []domain.RendezVous) CompteurStatuts {
	c := CompteurStatuts{Total: len(list)}
	for _, r := range list {
		switch r.Statut {
		case domain.StatutEnAttente:
			c.EnAttente++
		case domain.StatutConfirme:
			c.Confirmes++
		case domain.StatutConsulte:
			c.Consultes++
		case domain.StatutAnnule:
			c.Annules++
		default:
			c.Autres++
		}
	}
	return c
}

// GroupeMedecin is one doctor's block in the secretary's day view.
type GroupeMedecin struct {
	MedecinID  string
	Medecin    string
	RendezVous []domain.RendezVous
}

// GrouperParMedecin buckets appointments by doctor, preserving first-seen
// doctor order and input order within each bucket.
func GrouperParMedecin(list []domain.RendezVous) []GroupeMedecin {
	index := make(map[string]int)
	groups := make([]GroupeMedecin, 0)
	for _, r := range list {
		i, ok := index[r.MedecinID]
		if !ok {
			i = len(groups)
			index[r.MedecinID] = i
			groups = append(groups, GroupeMedecin{MedecinID: r.MedecinID, Medecin: r.Medecin})
		}
		groups[i].RendezVous = append(groups[i].RendezVous, r)
	}
	return groups
}

// TrierParInstant sorts ascending by combined date+time; unparseable
// entries sink to the end.
func TrierParInstant(list []domain.RendezVous, loc *time.Location) {
	sort.SliceStable(list, func(i, j int) bool {
		a, errA := list[i].StartsAt(loc)
		b, errB := list[j].StartsAt(loc)
		if errA != nil {
			return false
		}
		if errB != nil {
			return true
		}
		return a.Before(b)
	})
}

// FiltrerParStatut keeps appointments matching the canonical status;
// an empty statut keeps everything.
func FiltrerParStatut(list []domain.RendezVous, statut domain.Statut) []domain.RendezVous {
	if statut == "" {
		return list
	}
	out := make([]domain.RendezVous, 0, len(list))
	for _, r := range list {
		if r.Statut == statut {
			out = append(out, r)
		}
	}
	return out
}
