// internal/ua/ua.go
//
// User-Agent parsing helpers.
//
// This wrapper isolates the third-party `github.com/avct/uasurfer` API so
// the rest of the codebase never sees its enums or structs.  Visit
// ingestion uses it for two things: dropping crawler traffic and storing a
// coarse device class on each page_visit row.
package ua

import (
	"fmt"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Device is the coarse class stored in page_visit.device.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
	DeviceOther   Device = "other"
)

// Info carries the UA attributes used by visit tracking.
//
// Example (Chrome on macOS):
//
//	Browser   "Chrome"
//	Version   "125.0.6422"
//	OS        "MacOSX"
//	OSVersion "14.4"
//	Device    "desktop"
//	IsBot     false
type Info struct {
	Browser   string
	Version   string
	OS        string
	OSVersion string
	Device    Device
	IsBot     bool
	Raw       string
}

// Parse converts a raw header into an Info struct.  An empty header is
// treated as a bot; real browsers always send one.
func Parse(raw string) Info {
	if strings.TrimSpace(raw) == "" {
		return Info{Device: DeviceOther, IsBot: true}
	}
	u := surfer.Parse(raw)

	info := Info{
		Browser:   strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:   versionToString(u.Browser.Version),
		OS:        strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion: versionToString(u.OS.Version),
		IsBot:     u.IsBot(),
		Raw:       raw,
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = DeviceDesktop
	case surfer.DeviceTablet:
		info.Device = DeviceTablet
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = DeviceMobile
	default:
		info.Device = DeviceOther
	}

	return info
}

// versionToString renders a semantic version in dotted form while trimming
// trailing zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}
