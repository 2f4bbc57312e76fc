// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import "github.com/mileusna/useragent"

// Device classes.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// Client describes who is behind a request.
type Client struct {
	IP      string
	Country string
	Browser string
	OS      string
	Device  string
}

// Describe resolves ip and parses the user agent string.
func (r *Resolver) Describe(ip, userAgent string) Client {
	c := Client{IP: ip, Country: r.Country(ip)}

	ua := useragent.Parse(userAgent)
	c.Browser, c.OS = ua.Name, ua.OS
	if c.Browser == "" {
		c.Browser = "Unknown"
	}
	if c.OS == "" {
		c.OS = "Unknown"
	}
	switch {
	case ua.Mobile:
		c.Device = DeviceMobile
	case ua.Tablet:
		c.Device = DeviceTablet
	case ua.Bot:
		c.Device = DeviceBot
	default:
		c.Device = DeviceDesktop
	}
	return c
}

// LogAttrs returns c as slog key-value pairs. Unknown countries are left out.
func (c Client) LogAttrs() []any {
	attrs := []any{"ip", c.IP, "browser", c.Browser, "os", c.OS, "device", c.Device}
	if c.Country != "" {
		attrs = append(attrs, "country", c.Country)
	}
	return attrs
}
