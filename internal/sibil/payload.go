// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package sibil

import (
	"time"
	_ "time/tzdata"

	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/taxes"
)

var paris = mustLoadParis()

func mustLoadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(err)
	}
	return loc
}

type producer struct {
	Nom           string `json:"nom"`
	NumeroLicence string `json:"numero_licence"`
	Siret         string `json:"siret,omitempty"`
}

type lieu struct {
	Nom        string `json:"nom"`
	Adresse    string `json:"adresse,omitempty"`
	CodePostal string `json:"code_postal"`
	Ville      string `json:"ville"`
	Jauge      int    `json:"jauge,omitempty"`
}

// representation amounts are decimal strings with two digits.
type representation struct {
	Reference       string `json:"reference,omitempty"`
	Date            string `json:"date"`
	Heure           string `json:"heure"`
	Gratuit         bool   `json:"gratuit"`
	BilletsPayants  int    `json:"nb_billets_payants"`
	BilletsExoneres int    `json:"nb_billets_exoneres"`
	RecetteTTC      string `json:"recette_billetterie_ttc"`
	RecetteHT       string `json:"recette_billetterie_ht"`
	MontantTVA      string `json:"montant_tva"`
	TauxTVA         string `json:"taux_tva"`
}

type payload struct {
	Reference       string           `json:"reference,omitempty"`
	Producteur      producer         `json:"producteur"`
	Lieu            lieu             `json:"lieu"`
	TypeSpectacle   string           `json:"type_spectacle"`
	NomSpectacle    string           `json:"nom_spectacle"`
	Representations []representation `json:"representations"`
}

func newPayload(d *models.SibilDeclaration) payload {
	p := payload{
		Reference: d.ID,
		Producteur: producer{
			Nom:           d.Producer.Name,
			NumeroLicence: d.Producer.LicenseNumber,
			Siret:         d.Producer.Siret,
		},
		Lieu: lieu{
			Nom:        d.Venue.Name,
			Adresse:    d.Venue.Address,
			CodePostal: d.Venue.PostalCode,
			Ville:      d.Venue.City,
			Jauge:      d.Venue.Capacity,
		},
		TypeSpectacle:   d.PerformanceType,
		NomSpectacle:    d.ShowName,
		Representations: make([]representation, 0, len(d.Events)),
	}

	for _, ev := range d.Events {
		split := taxes.SplitIncludingTaxes(ev.TicketingRevenueIncludingTaxes, ev.TicketingRevenueTaxRate)
		local := ev.Date.In(paris)
		p.Representations = append(p.Representations, representation{
			Reference:       ev.EventExternalID,
			Date:            local.Format("2006-01-02"),
			Heure:           local.Format("15:04"),
			Gratuit:         ev.Free,
			BilletsPayants:  ev.PaidTickets,
			BilletsExoneres: ev.FreeTickets,
			RecetteTTC:      split.IncludingTaxes,
			RecetteHT:       split.ExcludingTaxes,
			MontantTVA:      split.TaxAmount,
			TauxTVA:         split.Rate,
		})
	}
	return p
}
