// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package commands

import (
	"fmt"
	"io"
	"time"
	_ "time/tzdata" // Europe/Paris must resolve on hosts without zoneinfo

	"github.com/goccy/go-json"

	"github.com/tomtom215/declaspectacle/internal/config"
	"github.com/tomtom215/declaspectacle/internal/ticketing"
)

var paris = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(err)
	}
	return loc
}()

// buildTargets resolves connection names into connectors. An empty list
// selects every configured connection.
func buildTargets(c *config.Config, names []string) ([]ticketing.Target, error) {
	if len(names) == 0 {
		names = c.ConnectionNames()
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no connection configured")
	}

	targets := make([]ticketing.Target, 0, len(names))
	for _, name := range names {
		conn, err := c.Connection(name)
		if err != nil {
			return nil, err
		}
		connector, err := ticketing.FromConfig(conn, c.Ticketing)
		if err != nil {
			return nil, err
		}
		targets = append(targets, ticketing.Target{Name: name, Connector: connector})
	}
	return targets, nil
}

// parseWindow reads --from and --to. Dates without a time are midnight in
// Paris. An empty from starts lookback before now; an empty to is unbounded.
func parseWindow(from, to string, lookback time.Duration, now time.Time) (time.Time, *time.Time, error) {
	start := now.Add(-lookback)
	if from != "" {
		t, err := parseDate(from)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}
	if to == "" {
		return start, nil, nil
	}

	end, err := parseDate(to)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid --to: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, nil, fmt.Errorf("--to %s is not after --from %s", to, start.Format(time.RFC3339))
	}
	return start, &end, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", value, paris)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
