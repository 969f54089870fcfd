package stubserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	medecin := &User{Role: domain.RoleMedecin, Nom: "Roux", Prenom: "Anne", Email: "anne.roux@cabinet.fr"}
	_, err := store.AddUser(medecin, "motdepasse")
	require.NoError(t, err)

	u, ok := store.UserByID(medecin.ID)
	require.True(t, ok)
	u.Nom = "Écrasé"
	again, _ := store.UserByID(medecin.ID)
	assert.Equal(t, "Roux", again.Nom, "mutating a query result must not touch the stored account")

	r := store.AddRendezVous(&RendezVous{
		MedecinID: medecin.ID,
		PatientID: "64a000000000000000000002",
		Date:      "2025-12-01",
		Heure:     "09:00",
		Statut:    domain.StatutEnAttente,
	})
	got, ok := store.RendezVousByID(r.ID)
	require.True(t, ok)
	got.Statut = domain.StatutAnnule
	again2, _ := store.RendezVousByID(r.ID)
	assert.Equal(t, domain.StatutEnAttente, again2.Statut)

	listed := store.RendezVousWhere(func(*RendezVous) bool { return true })
	require.Len(t, listed, 1)
	listed[0].Commentaire = "écrasé"
	again3, _ := store.RendezVousByID(r.ID)
	assert.Empty(t, again3.Commentaire)
}

func TestCreateRendezVousIfFree(t *testing.T) {
	store := NewStore()
	first, err := store.CreateRendezVousIfFree(&RendezVous{
		MedecinID: "64a000000000000000000001",
		PatientID: "64a000000000000000000002",
		Date:      "2025-12-01",
		Heure:     "09:00",
		Statut:    domain.StatutEnAttente,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	// Same doctor, same slot: refused in the same locked section as the
	// check, so concurrent creates cannot both win.
	_, err = store.CreateRendezVousIfFree(&RendezVous{
		MedecinID: "64a000000000000000000001",
		PatientID: "64a000000000000000000003",
		Date:      "2025-12-01",
		Heure:     "09:00",
		Statut:    domain.StatutEnAttente,
	})
	assert.ErrorIs(t, err, errSlotTaken)

	// A cancelled appointment frees the slot.
	require.True(t, store.UpdateRendezVous(first.ID, func(r *RendezVous) {
		r.Statut = domain.StatutAnnule
	}))
	_, err = store.CreateRendezVousIfFree(&RendezVous{
		MedecinID: "64a000000000000000000001",
		PatientID: "64a000000000000000000003",
		Date:      "2025-12-01",
		Heure:     "09:00",
		Statut:    domain.StatutEnAttente,
	})
	assert.NoError(t, err)
}

func TestRescheduleRendezVousRefusesOccupiedSlot(t *testing.T) {
	store := NewStore()
	taken, err := store.CreateRendezVousIfFree(&RendezVous{
		MedecinID: "64a000000000000000000001",
		PatientID: "64a000000000000000000002",
		Date:      "2025-12-01",
		Heure:     "09:00",
		Statut:    domain.StatutConfirme,
	})
	require.NoError(t, err)
	other, err := store.CreateRendezVousIfFree(&RendezVous{
		MedecinID: "64a000000000000000000001",
		PatientID: "64a000000000000000000003",
		Date:      "2025-12-01",
		Heure:     "09:30",
		Statut:    domain.StatutEnAttente,
	})
	require.NoError(t, err)

	_, ok, err := store.RescheduleRendezVous(other.ID, func(r *RendezVous) {
		r.Heure = taken.Heure
	})
	require.True(t, ok)
	assert.ErrorIs(t, err, errSlotTaken)

	// The refused move left the appointment untouched.
	unchanged, _ := store.RendezVousByID(other.ID)
	assert.Equal(t, "09:30", unchanged.Heure)

	// Keeping its own slot is not a conflict.
	moved, ok, err := store.RescheduleRendezVous(other.ID, func(r *RendezVous) {
		r.Heure = "10:00"
	})
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "10:00", moved.Heure)

	_, ok, err = store.RescheduleRendezVous("64a0000000000000000000ff", func(r *RendezVous) {})
	assert.False(t, ok)
	assert.NoError(t, err)
}
