// internal/ua/ua.go
//
// User-Agent classification for the access log.
//
// This wrapper isolates the third-party `github.com/avct/uasurfer` API so
// the rest of the codebase never sees its enums or structs.  Only the
// coarse attributes worth a log field are kept: browser family, device
// class, and the crawler flag.
package ua

import (
	surfer "github.com/avct/uasurfer"
)

// Client is the classified caller.
//
// Example (Chrome on macOS):
//
//	Browser "BrowserChrome"
//	Device  "desktop"
//	Bot     false
//
// Device is one of "desktop", "tablet", "mobile", or "other".
type Client struct {
	Browser string
	Device  string
	Bot     bool
}

// Classify parses raw.  An empty header yields Device "other".
func Classify(raw string) Client {
	if raw == "" {
		return Client{Device: "other"}
	}
	u := surfer.Parse(raw)

	c := Client{
		Browser: u.Browser.Name.String(),
		Bot:     u.IsBot(),
	}
	switch u.DeviceType {
	case surfer.DeviceComputer:
		c.Device = "desktop"
	case surfer.DeviceTablet:
		c.Device = "tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		c.Device = "mobile"
	default:
		c.Device = "other"
	}
	return c
}
