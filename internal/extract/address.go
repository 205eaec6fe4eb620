package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/normalize"
)

// Address stages, most structured first.
var addressStages = []PatternRule{
	// Recipient block: "Recipient Details ... Address: <text>" up to a postcode, promo
	// marker or the next field label.
	Rule("recipient_block",
		`(?is)\brecipient\s*(?:details|info(?:rmation)?)\b.*?\baddress\s*[:：]?\s*(.+?)\s*(?:\bpost\s*code\b|\b\d{5}\b|\b(?:download|scan|shop\s+now|promo|voucher)\b)`,
		Then(Group(1), cutAddressAtLabel)),
	// House number followed by capitalised place-name segments: "No. 12, Jalan Mawar 3, Taman ...".
	Rule("house_number",
		`\b(No\.?\s*\d+[A-Za-z]?(?:[/\-]\d+[A-Za-z]?)?,?(?:\s+[A-Z0-9][A-Za-z0-9'./\-]*,?){2,20})`,
		Then(Group(1), cutAddressAtLabel)),
	// "Address: ..." through a 5-digit postcode and the capitalised city words after
	// it. The postcode must come before the next field label.
	Rule("label_to_postcode",
		`(?is)\baddress\s*[:：]\s*(.+?\b\d{5}\b(?-i:(?:[ \t]+[A-Z][A-Za-z]+)*))`,
		Then(Then(Group(1), cutAddressAtLabel), hasPostcode)),
	// Bounded fallback: the rest of the "Address:" line. The bound is wider than the
	// accepted maximum so over-long text is rejected, never truncated.
	Rule("label_line",
		`(?i)\baddress\s*[:：]\s*([^\n]{1,500})`,
		Group(1)),
}

var reAddressStop = regexp.MustCompile(`(?is)\s*\b(?:phone|tel|hp|mobile|name|post\s*code|order\s*(?:id|no)|tracking|cod|sku|qty|seller|sender|weight|product|item|variation|price|cashless|prepaid|payment|ship\s*(?:by|date))\b.*$`)

func cutAddressAtLabel(v string) (string, bool) {
	v = reAddressStop.ReplaceAllString(v, "")
	return v, v != ""
}

var rePostcode = regexp.MustCompile(`\b\d{5}\b`)

func hasPostcode(v string) (string, bool) {
	return v, rePostcode.MatchString(v)
}

var (
	reAddrOrderID    = regexp.MustCompile(`(?i)\border\s*(?:id|no\.?|number)\s*[:#]?\s*[A-Za-z0-9]+`)
	reAddrLabels     = regexp.MustCompile(`(?i)\b(?:name|post\s*code|address|alamat)\s*[:：]`)
	reAddrTracking   = regexp.MustCompile(`\b(?:SPXMY|MYPM|NVMY|MYEC)[A-Z0-9]*\b`)
	reAddrPromo      = regexp.MustCompile(`(?i)\b(?:download\s+the\s+\w+\s+app|scan\s+(?:to\s+track|the\s+qr(?:\s+code)?)|shop\s+now|free\s+shipping|thank\s+you\s+for\s+(?:shopping|your\s+order)(?:\s+with\s+us)?|tiktok\s+shop|shopee\s+xpress|spx\s+express)\b`)
	reAddrTrailNoise = regexp.MustCompile(`(?i)(?:[\s,;:|\-]+(?:tracking|track|scan|details|view|copy|more|logistics|barcode))+\s*$`)
)

// cleanAddress strips embedded labels, tracking tokens and promotional phrases.
func cleanAddress(s string) string {
	s = reAddrOrderID.ReplaceAllString(s, " ")
	s = reAddrLabels.ReplaceAllString(s, " ")
	s = reAddrTracking.ReplaceAllString(s, " ")
	s = reAddrPromo.ReplaceAllString(s, " ")
	s = normalize.CollapseWhitespace(s)
	for {
		trimmed := reAddrTrailNoise.ReplaceAllString(s, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	s = strings.ReplaceAll(s, " ,", ",")
	return strings.Trim(s, " ,;:-|.")
}

var postcodes = FieldExtractor{
	Field: "postcode",
	Rules: []PatternRule{
		Rule("labelled", `(?i)\bpost\s*code\s*[:：]?\s*(\d{5})\b`, Group(1)),
		Rule("before_city", `\b(\d{5})[ \t,]+[A-Z][a-zA-Z]+`, Group(1)),
	},
}

// reWindowEnd finds the first line that starts a field unrelated to the recipient.
var reWindowEnd = regexp.MustCompile(`(?im)^[ \t]*(?:from|sender|seller|shop\s*name|return\s*address|order\s*(?:id|no)|tracking|product|item|sku|qty|quantity|variation|price|weight|cod|ship\s*(?:by|date))\b[^:：\n]{0,12}[:：]`)

// addressWindow returns the text a postcode may be taken from: from the start of the
// matched address stage up to the next unrelated field line.
func addressWindow(text string, r PatternRule) string {
	loc := r.Pattern.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	w := text[loc[0]:]
	if end := reWindowEnd.FindStringIndex(w); end != nil {
		w = w[:end[0]]
	}
	return w
}

// AddressOutcome records how the address resolved.
type AddressOutcome struct {
	Value    string
	Stage    string
	Rejected bool // a candidate was found but failed the length check
	Found    bool
}

// resolveAddress runs the stage cascade, the cleanup pass, the length check and the
// postcode merge. The postcode is only taken from near the address so a sender or
// seller postcode elsewhere on the label is never merged.
func resolveAddress(text string) AddressOutcome {
	var (
		candidate string
		stage     string
		window    string
	)
	for _, r := range addressStages {
		if v, ok := r.Apply(text); ok {
			candidate, stage = v, r.Name
			window = addressWindow(text, r)
			break
		}
	}
	if stage == "" {
		return AddressOutcome{Value: constants.AddressNotFound}
	}

	cleaned := cleanAddress(candidate)
	v := common.NewValidator().Field(string(constants.FieldCustomerAddress), cleaned,
		common.MinLength(constants.MinAddressLength),
		common.MaxLength(constants.MaxAddressLength))
	if v.HasErrors() {
		return AddressOutcome{Value: constants.AddressInvalid, Stage: stage, Rejected: true}
	}

	if pc, ok := postcodes.Extract(window); ok && !strings.Contains(cleaned, pc.Value) {
		merged := cleaned + ", " + pc.Value
		if utf8.RuneCountInString(merged) <= constants.MaxAddressLength {
			cleaned = merged
		}
	}
	return AddressOutcome{Value: cleaned, Stage: stage, Found: true}
}
