package constants

import "strings"

// Platform is the originating marketplace of a label.
type Platform string

const (
	PlatformTikTok  Platform = "TIKTOK"
	PlatformShopee  Platform = "SHOPEE"
	PlatformUnknown Platform = "UNKNOWN"
)

var allPlatforms = []Platform{
	PlatformTikTok,
	PlatformShopee,
}

// Label is the human-readable marketplace name.
func (p Platform) Label() string {
	switch p {
	case PlatformTikTok:
		return "TikTok Shop"
	case PlatformShopee:
		return "Shopee"
	default:
		return "Unknown"
	}
}

func PlatformsAsStringSlice() []string {
	result := make([]string, len(allPlatforms))
	for i, p := range allPlatforms {
		result[i] = string(p)
	}
	return result
}

// CanonicalizePlatform maps user input ("tiktok", "TikTok Shop", "shopee") to a Platform.
func CanonicalizePlatform(input string) (Platform, bool) {
	if input == "" {
		return PlatformUnknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Platform{
		"tiktok shop":  PlatformTikTok,
		"tik tok":      PlatformTikTok,
		"marketplacea": PlatformTikTok,
		"spx":          PlatformShopee,
		"marketplaceb": PlatformShopee,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}

	for _, p := range allPlatforms {
		if normalized == strings.ToLower(string(p)) {
			return p, true
		}
	}
	return PlatformUnknown, false
}
