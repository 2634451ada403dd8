package utils

import (
	"regexp"
	"strings"

	"authcore/internal/entity"
)

var (
	mobileAgent = regexp.MustCompile(`mobile|android|iphone|ipod|blackberry|iemobile|opera mini`)
	tabletAgent = regexp.MustCompile(`tablet|ipad|playbook|silk`)
)

// ParseUserAgent derives coarse device info from a User-Agent header.
// Checks run in order; the first match wins.
func ParseUserAgent(userAgent string) entity.DeviceInfo {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" || ua == entity.UnknownValue {
		return entity.DeviceInfo{Type: entity.DeviceUnknown, Browser: entity.UnknownValue, OS: entity.UnknownValue}
	}

	deviceType := entity.DeviceDesktop
	switch {
	case mobileAgent.MatchString(ua):
		deviceType = entity.DeviceMobile
	case tabletAgent.MatchString(ua):
		deviceType = entity.DeviceTablet
	}

	browser := entity.UnknownValue
	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		browser = "Safari"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident"):
		browser = "Internet Explorer"
	}

	os := entity.UnknownValue
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macos"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "ios") || strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	}

	return entity.DeviceInfo{Type: deviceType, Browser: browser, OS: os}
}
