// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package models

import (
	"testing"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/validation"
)

var (
	testProducer = SibilProducer{Name: "Compagnie du Sud", LicenseNumber: "PLATESV-R-2021-000123"}
	testVenue    = SibilVenue{Name: "La Cigale", PostalCode: "75018", City: "Paris"}
)

func TestNewSibilDeclaration(t *testing.T) {
	w := LiteEventSerieWrapper{
		Serie: LiteEventSerie{ExternalID: "s1", Name: "Hamlet", TaxRate: Float64(0.021)},
		EventsWrappers: []LiteEventWrapper{
			{
				Event: LiteEvent{ExternalID: "e1", StartAt: date(20, 20)},
				EventCategoryTickets: []LiteEventCategoryTickets{
					{Category: "Plein", Price: 25, NumberSold: 30, TotalRevenueIncludingTaxes: 750},
					{Category: "Réduit", Price: 14, NumberSold: 12, TotalRevenueIncludingTaxes: 168},
					{Category: "Exonéré", Price: 0, NumberSold: 5},
				},
			},
		},
	}

	decl, err := NewSibilDeclaration(testProducer, testVenue, "theatre", &w)
	if err != nil {
		t.Fatalf("NewSibilDeclaration() error = %v", err)
	}
	checkStringEqual(t, "show", decl.ShowName, "Hamlet")
	checkIntEqual(t, "events", len(decl.Events), 1)

	ev := decl.Events[0]
	checkFloatEqual(t, "revenue", ev.TicketingRevenueIncludingTaxes, 918)
	checkFloatEqual(t, "rate", ev.TicketingRevenueTaxRate, 0.021)
	checkIntEqual(t, "paid", ev.PaidTickets, 42)
	checkIntEqual(t, "free", ev.FreeTickets, 5)
	if ev.Free {
		t.Error("event with paid tickets is not free")
	}

	if err := validation.ValidateStruct(&decl); err != nil {
		t.Errorf("built declaration should validate: %v", err)
	}
}

func TestNewSibilDeclaration_NoRate(t *testing.T) {
	w := LiteEventSerieWrapper{
		Serie: LiteEventSerie{ExternalID: "s1", Name: "Gala"},
		EventsWrappers: []LiteEventWrapper{
			{
				Event: LiteEvent{ExternalID: "e1", StartAt: date(20, 20)},
				EventCategoryTickets: []LiteEventCategoryTickets{
					{Category: "A", Price: 10, NumberSold: 1, TotalRevenueIncludingTaxes: 10, TaxRate: Float64(0.055)},
					{Category: "B", Price: 10, NumberSold: 1, TotalRevenueIncludingTaxes: 10, TaxRate: Float64(0.2)},
				},
			},
		},
	}

	_, err := NewSibilDeclaration(testProducer, testVenue, "concert", &w)
	if connerr.KindOf(err) != connerr.KindVendorData {
		t.Errorf("expected vendor data error, got %v", err)
	}
}

func TestSibilDeclarationValidation(t *testing.T) {
	decl := SibilDeclaration{
		Producer:        testProducer,
		Venue:           SibilVenue{Name: "X", PostalCode: "750", City: "Paris"},
		PerformanceType: "concert",
		ShowName:        "Gala",
	}
	err := validation.ValidateStruct(&decl)
	if err == nil {
		t.Fatal("expected validation errors for postal code and empty events")
	}
}
