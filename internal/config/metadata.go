package config

import (
	"strings"
)

// Metadata describes one font build. Empty fields fall back to the
// configuration's props or a fixed default when resolved.
type Metadata struct {
	Filename     string `json:"filename"`
	Family       string `json:"family"`
	Designer     string `json:"designer"`
	License      string `json:"license"`
	LicenseURL   string `json:"license_url"`
	SheetVersion string `json:"sheet_version"`
	Style        string `json:"style"`
}

type license struct {
	text string
	url  string
}

var licenseShortcuts = map[string]license{
	"ofl": {
		text: "This Font Software is licensed under the SIL Open Font License, Version 1.1.",
		url:  "https://openfontlicense.org",
	},
	"cc0": {
		text: "CC0 1.0 Universal (CC0 1.0) Public Domain Dedication",
		url:  "https://creativecommons.org/publicdomain/zero/1.0/",
	},
}

// Resolve fills empty fields from the configuration and expands the
// ofl and cc0 license shortcuts.
func (m Metadata) Resolve(cfg *Configuration) Metadata {
	if m.Filename == "" {
		m.Filename = cfg.Props.Filename
	}
	if m.Filename == "" {
		m.Filename = "MyFont"
	}
	m.Filename = strings.TrimSuffix(m.Filename, ".ttf")
	if m.Family == "" {
		m.Family = m.Filename
	}
	if m.Style == "" {
		m.Style = cfg.Props.Style
	}
	if m.Style == "" {
		m.Style = "Regular"
	}
	if m.Designer == "" {
		m.Designer = "me"
	}
	if m.SheetVersion == "" {
		m.SheetVersion = cfg.SheetVersion
	}

	if l, ok := licenseShortcuts[strings.ToLower(strings.TrimSpace(m.License))]; ok {
		m.License = l.text
		if m.LicenseURL == "" {
			m.LicenseURL = l.url
		}
	}
	if m.License == "" {
		m.License = "All rights reserved"
	}
	return m
}
