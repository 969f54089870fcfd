package scheduler

// Creneaux is the clinic's bookable time vocabulary: half-hour ticks from
// opening to closing, with the lunch break carved out. Appointments can
// only be requested on one of these.
var Creneaux = []string{
	"08:00", "08:30", "09:00", "09:30", "10:00", "10:30",
	"11:00", "11:30", "14:00", "14:30", "15:00", "15:30",
	"16:00", "16:30", "17:00", "17:30", "18:00",
}

// ValidCreneau reports whether heure belongs to the slot vocabulary.
func ValidCreneau(heure string) bool {
	for _, c := range Creneaux {
		if c == heure {
			return true
		}
	}
	return false
}
