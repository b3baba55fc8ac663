// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package extract pulls operation-specific detail out of decoded audit
// payloads: inbox rule summaries, user agent breakdowns, certificate and
// secret diffs, and the property pickers for directory operations.
//
// Extractors never fail: unparseable input yields an "Unknown" or empty
// result, and malformed nested structures simply omit that extractor's
// output for the record.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ualscope/ualscope/internal/models"
)

var (
	reFirefoxVersion = regexp.MustCompile(`Firefox/(\d+\.\d+)`)
	reChromeVersion  = regexp.MustCompile(`Chrome/(\d+\.\d+)`)
	reSafariVersion  = regexp.MustCompile(`Version/(\d+\.\d+)`)
	reEdgeVersion    = regexp.MustCompile(`Edge/(\d+\.\d+)`)
	reMSIEVersion    = regexp.MustCompile(`MSIE (\d+\.\d+)`)
	reTridentVersion = regexp.MustCompile(`rv:(\d+\.\d+)`)

	reWindowsNT  = regexp.MustCompile(`Windows NT (\d+\.\d+)`)
	reMacOSX     = regexp.MustCompile(`Mac OS X (\d+[._]\d+)`)
	reLinuxName  = regexp.MustCompile(`Linux ([^;)]+)`)
	reAndroidVer = regexp.MustCompile(`Android (\d+\.\d+)`)
	reIOSVer     = regexp.MustCompile(`OS (\d+_\d+)`)
)

// ParseUserAgent classifies a raw user agent string. Detection is ordered
// first-match-wins, so a Chrome UA (which also contains "Safari") reports
// Chrome. Anything unrecognized stays "Unknown"; the raw string is always
// preserved.
func ParseUserAgent(userAgent string) *models.UserAgentInfo {
	info := &models.UserAgentInfo{
		Browser:        "Unknown",
		BrowserVersion: "Unknown",
		OS:             "Unknown",
		OSVersion:      "Unknown",
		Device:         "Unknown",
		Raw:            userAgent,
	}

	switch {
	case strings.Contains(userAgent, "Firefox"):
		info.Browser = "Firefox"
		if m := reFirefoxVersion.FindStringSubmatch(userAgent); m != nil {
			info.BrowserVersion = m[1]
		}
	case strings.Contains(userAgent, "Chrome"):
		info.Browser = "Chrome"
		if m := reChromeVersion.FindStringSubmatch(userAgent); m != nil {
			info.BrowserVersion = m[1]
		}
	case strings.Contains(userAgent, "Safari"):
		info.Browser = "Safari"
		if m := reSafariVersion.FindStringSubmatch(userAgent); m != nil {
			info.BrowserVersion = m[1]
		}
	case strings.Contains(userAgent, "Edge"):
		info.Browser = "Edge"
		if m := reEdgeVersion.FindStringSubmatch(userAgent); m != nil {
			info.BrowserVersion = m[1]
		}
	case strings.Contains(userAgent, "MSIE") || strings.Contains(userAgent, "Trident/"):
		info.Browser = "Internet Explorer"
		if m := reMSIEVersion.FindStringSubmatch(userAgent); m != nil {
			info.BrowserVersion = m[1]
		} else if m := reTridentVersion.FindStringSubmatch(userAgent); m != nil {
			info.BrowserVersion = m[1]
		}
	}

	switch {
	case strings.Contains(userAgent, "Windows"):
		info.OS = "Windows"
		if m := reWindowsNT.FindStringSubmatch(userAgent); m != nil {
			info.OSVersion = windowsVersion(m[1])
		}
	case strings.Contains(userAgent, "Macintosh"):
		info.OS = "macOS"
		if m := reMacOSX.FindStringSubmatch(userAgent); m != nil {
			info.OSVersion = strings.ReplaceAll(m[1], "_", ".")
		}
	case strings.Contains(userAgent, "Linux"):
		info.OS = "Linux"
		if m := reLinuxName.FindStringSubmatch(userAgent); m != nil {
			info.OSVersion = m[1]
		}
	case strings.Contains(userAgent, "Android"):
		info.OS = "Android"
		if m := reAndroidVer.FindStringSubmatch(userAgent); m != nil {
			info.OSVersion = m[1]
		}
	case strings.Contains(userAgent, "iOS"):
		info.OS = "iOS"
		if m := reIOSVer.FindStringSubmatch(userAgent); m != nil {
			info.OSVersion = strings.ReplaceAll(m[1], "_", ".")
		}
	}

	switch {
	case strings.Contains(userAgent, "Mobile"):
		info.Device = "Mobile"
		info.IsMobile = true
	case strings.Contains(userAgent, "Tablet"):
		info.Device = "Tablet"
		info.IsMobile = true
	default:
		info.Device = "Desktop"
	}

	return info
}

// windowsVersion maps NT kernel versions to their marketing names.
func windowsVersion(nt string) string {
	v, err := strconv.ParseFloat(nt, 64)
	if err != nil {
		return nt
	}
	switch v {
	case 10:
		return "10"
	case 6.3:
		return "8.1"
	case 6.2:
		return "8"
	default:
		return nt
	}
}
