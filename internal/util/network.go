// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// MaxEndpointURLLength bounds outbound signal endpoint URLs.
const MaxEndpointURLLength = 2048

// blockedPrefixes are the ranges outbound signals may never reach.
var blockedPrefixes = mustPrefixes(
	"0.0.0.0/8", "10.0.0.0/8", "100.64.0.0/10", "127.0.0.0/8",
	"169.254.0.0/16", "172.16.0.0/12", "192.0.0.0/24", "192.0.2.0/24",
	"192.168.0.0/16", "198.18.0.0/15", "198.51.100.0/24", "203.0.113.0/24",
	"224.0.0.0/4", "240.0.0.0/4",
	"::/128", "::1/128", "fc00::/7", "fe80::/10",
)

func mustPrefixes(cidrs ...string) []netip.Prefix {
	out := make([]netip.Prefix, len(cidrs))
	for i, c := range cidrs {
		out[i] = netip.MustParsePrefix(c)
	}
	return out
}

// IsPrivateAddr reports whether addr is private, loopback or otherwise
// reserved. The zero Addr counts as private.
func IsPrivateAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}
	addr = addr.Unmap()
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func ipAddr(ip net.IP) netip.Addr {
	addr, _ := netip.AddrFromSlice(ip)
	return addr
}

// ValidateEndpointURL checks that rawURL is an http(s) URL whose host
// resolves only to public addresses.
func ValidateEndpointURL(rawURL string) error {
	if len(rawURL) > MaxEndpointURLLength {
		return fmt.Errorf("endpoint URL longer than %d characters", MaxEndpointURLLength)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing endpoint URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("endpoint URL must use http or https")
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return errors.New("endpoint URL has no host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return errors.New("endpoint URL points at localhost")
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if IsPrivateAddr(addr) {
			return fmt.Errorf("endpoint address %s is private", addr)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", host, err)
	}
	if len(ips) == 0 {
		return fmt.Errorf("%q has no addresses", host)
	}
	for _, ip := range ips {
		if IsPrivateAddr(ipAddr(ip.IP)) {
			return fmt.Errorf("%q resolves to private address %s", host, ip.IP)
		}
	}
	return nil
}

// SSRFSafeDialContext wraps dialer so that it only connects to public
// addresses. The host is resolved once and the checked address is dialled
// directly, so a second DNS answer cannot redirect the connection.
func SSRFSafeDialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("splitting %q: %w", addr, err)
		}
		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", host, err)
		}
		for _, ip := range ips {
			if IsPrivateAddr(ipAddr(ip.IP)) {
				return nil, fmt.Errorf("dial to private address %s (%s) blocked", ip.IP, host)
			}
		}

		err = fmt.Errorf("%q has no addresses", host)
		for _, ip := range ips {
			conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ip.IP.String(), port))
			if dialErr == nil {
				return conn, nil
			}
			err = dialErr
		}
		return nil, fmt.Errorf("connecting to %q: %w", host, err)
	}
}
