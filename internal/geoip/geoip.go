// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip maps client addresses to ISO country codes for access logs
// using a MaxMind GeoLite2-Country database.
package geoip

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/netip"
	"os"
	"sync/atomic"

	"github.com/oschwald/maxminddb-golang"
)

// LocalCountry is recorded for private, loopback and link-local addresses.
const LocalCountry = "LOCAL"

// Lookup resolves addresses. The zero value has no database and only
// recognises local addresses.
type Lookup struct {
	reader atomic.Pointer[maxminddb.Reader]
}

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Open loads the database at path. An empty path returns a Lookup without a
// database. On error the returned Lookup is still usable.
func Open(path string) (*Lookup, error) {
	g := &Lookup{}
	if path == "" {
		return g, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return g, fmt.Errorf("geoip database %s does not exist", path)
	}
	r, err := maxminddb.Open(path)
	if err != nil {
		return g, fmt.Errorf("opening geoip database: %w", err)
	}
	g.reader.Store(r)
	return g, nil
}

// LookupCountry returns the country of ip, LocalCountry for local addresses
// or "" when it cannot be determined.
func (g *Lookup) LookupCountry(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}
	addr = addr.Unmap()
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() {
		return LocalCountry
	}

	r := g.reader.Load()
	if r == nil {
		return ""
	}
	var rec countryRecord
	if err := r.Lookup(net.IP(addr.AsSlice()), &rec); err != nil {
		return ""
	}
	return rec.Country.ISOCode
}

// Enabled reports whether a database is loaded.
func (g *Lookup) Enabled() bool {
	return g.reader.Load() != nil
}

// Close releases the database. Lookups afterwards behave like the zero value.
func (g *Lookup) Close() error {
	if r := g.reader.Swap(nil); r != nil {
		return r.Close()
	}
	return nil
}
