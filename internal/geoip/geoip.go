// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package geoip provides optional, fully offline IP geolocation from a
// local MaxMind database. Unlike the geomap submission it never leaves
// the host, so it can run without analyst confirmation. When no database
// is configured the resolver is simply absent and the endpoint reports
// the feature as unavailable.
package geoip

import (
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/maxminddb-golang"
)

// Location is the resolved geolocation of one IP address.
type Location struct {
	IPAddress   string  `json:"ip_address"`
	CountryCode string  `json:"country_code,omitempty"`
	Country     string  `json:"country,omitempty"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	Found       bool    `json:"found"`
}

// mmdbRecord maps the subset of the GeoLite2/GeoIP2 City schema we read.
type mmdbRecord struct {
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// Resolver looks up IPs in a local MaxMind database file.
type Resolver struct {
	mu     sync.RWMutex
	reader *maxminddb.Reader
}

// Open loads the database at path.
func Open(path string) (*Resolver, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Close releases the database.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reader == nil {
		return nil
	}
	err := r.reader.Close()
	r.reader = nil
	return err
}

// Lookup resolves one IP. Unroutable input or a miss yields Found=false
// rather than an error; only database failures error.
func (r *Resolver) Lookup(ip string) (Location, error) {
	loc := Location{IPAddress: ip}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return loc, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.reader == nil {
		return loc, fmt.Errorf("geoip database closed")
	}

	var record mmdbRecord
	if err := r.reader.Lookup(parsed, &record); err != nil {
		return loc, fmt.Errorf("geoip lookup %s: %w", ip, err)
	}
	if record.Country.ISOCode == "" && len(record.Country.Names) == 0 {
		return loc, nil
	}

	loc.Found = true
	loc.CountryCode = record.Country.ISOCode
	loc.Country = record.Country.Names["en"]
	loc.City = record.City.Names["en"]
	loc.Latitude = record.Location.Latitude
	loc.Longitude = record.Location.Longitude
	return loc, nil
}

// Resolve maps a list of IPs, skipping lookup failures so one bad record
// never hides the rest.
func (r *Resolver) Resolve(ips []string) []Location {
	locations := make([]Location, 0, len(ips))
	for _, ip := range ips {
		loc, err := r.Lookup(ip)
		if err != nil {
			continue
		}
		locations = append(locations, loc)
	}
	return locations
}
