package extract

import (
	"strings"

	"github.com/joseph-ayodele/awb-extractor/constants"
)

type platformKeywords struct {
	platform constants.Platform
	keywords []string
}

// Detector classifies label text into a platform by keyword scan.
type Detector struct {
	order []platformKeywords
}

// NewDetector checks TikTok Shop keywords before Shopee keywords, since a label
// can mention both.
func NewDetector() *Detector {
	return &Detector{order: []platformKeywords{
		{platform: constants.PlatformTikTok, keywords: []string{"tiktok shop", "tiktok", "tik tok"}},
		{platform: constants.PlatformShopee, keywords: []string{"shopee", "spx express", "shopee xpress"}},
	}}
}

// Classify never fails; PlatformUnknown means no keyword set matched.
func (d *Detector) Classify(text string) constants.Platform {
	lower := strings.ToLower(text)
	for _, pk := range d.order {
		if containsAny(lower, pk.keywords) {
			return pk.platform
		}
	}
	return constants.PlatformUnknown
}
