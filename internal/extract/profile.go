package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/normalize"
)

// CourierRule maps keywords (lower case) to a courier name.
type CourierRule struct {
	Courier  string
	Keywords []string
}

// Profile bundles the field extractors and platform-specific rules for one marketplace.
type Profile struct {
	Platform constants.Platform

	OrderID   FieldExtractor
	Tracking  FieldExtractor
	ShipDate  FieldExtractor
	Name      FieldExtractor
	Phone     FieldExtractor
	CODAmount FieldExtractor
	Product   FieldExtractor
	SKU       FieldExtractor
	Quantity  FieldExtractor
	Seller    FieldExtractor

	Couriers         []CourierRule
	DefaultCourier   string
	CashlessKeywords []string
}

// ProfileOptions carries the tunables shared by all profiles.
type ProfileOptions struct {
	// OrderYearPrefixes are the two-digit prefixes accepted by the bare order-id heuristic.
	OrderYearPrefixes []string
}

// DefaultOrderYearPrefixes is the prefix set of date-coded Shopee order IDs seen so far.
var DefaultOrderYearPrefixes = []string{"25", "24", "23"}

var reTrackingSuffixShape = regexp.MustCompile(`^0\d+[A-Za-z]$`)

// IsTrackingSuffix reports whether an order-id candidate looks like the tail of a
// tracking number: a leading 0 and one trailing letter.
func IsTrackingSuffix(v string) bool {
	return reTrackingSuffixShape.MatchString(v)
}

func orderIDExtractor(platform constants.Platform, prefixes []string) FieldExtractor {
	if len(prefixes) == 0 {
		prefixes = DefaultOrderYearPrefixes
	}
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	rules := []PatternRule{
		Rule("labelled", `(?i)\border\s*(?:id|no\.?|number|#)\s*[:：#]?\s*([A-Za-z0-9]{8,24})\b`, Squash(1)),
		Rule("year_prefix", `\b((?:`+strings.Join(quoted, "|")+`)\d{4}[A-Z0-9]{6,9})\b`, Group(1)),
	}
	if platform == constants.PlatformTikTok {
		rules = append(rules, Rule("numeric_18", `\b(\d{18})\b`, Group(1)))
	}
	rules = append(rules, Rule("numeric_15", `\b(\d{15})\b`, Group(1)))
	return FieldExtractor{
		Field:   constants.FieldOrderID,
		Rules:   rules,
		Default: constants.NotAvailable,
		Reject:  IsTrackingSuffix,
	}
}

func trackingLabelRule() PatternRule {
	return Rule("labelled", `(?i:\b(?:tracking|awb|consignment)\s*(?:no\.?|number|id|#)?)\s*[:：#]\s*([A-Z0-9]{4,}(?: \d{3,6})*)`, Compact(1))
}

const amountExpr = `((?:RM|MYR)?\s*\d[\d,]*(?:\.\d{1,2})?)`

func amountProjection(m []string) (string, bool) {
	d, ok := normalize.ParseAmount(m[1])
	if !ok {
		return "", false
	}
	return d.String(), true
}

func codAmountExtractor() FieldExtractor {
	return FieldExtractor{
		Field: constants.FieldCODAmount,
		Rules: []PatternRule{
			Rule("cod_label", `(?i)\bCOD\s*(?:amount|amt|value)?\s*[:：]?\s*`+amountExpr, amountProjection),
			Rule("cash_on_delivery", `(?i)\b(?:cash\s*on\s*delivery|collect(?:ion)?\s*amount|amount\s*to\s*collect)\s*[:：]?\s*`+amountExpr, amountProjection),
			Rule("amount_then_cod", `(?i)\b((?:RM|MYR)\s*\d[\d,]*\.\d{2})\s*\(?COD\)?`, amountProjection),
		},
		Default: "0",
	}
}

// quantityProjection refuses zero or unparseable counts so the field is reported as
// defaulted rather than matched.
func quantityProjection(m []string) (string, bool) {
	n, ok := normalize.ParseQuantity(m[1])
	if !ok {
		return "", false
	}
	return strconv.Itoa(n), true
}

func quantityExtractor() FieldExtractor {
	return FieldExtractor{
		Field: constants.FieldQuantity,
		Rules: []PatternRule{
			Rule("labelled", `(?i)\b(?:qty|quantity)\s*[:：]?\s*[x×]?\s*(\d{1,4})\b`, quantityProjection),
			Rule("pieces", `(?i)\b(\d{1,3})\s*(?:pcs|pieces|units?)\b`, quantityProjection),
		},
		Default: strconv.Itoa(constants.DefaultQuantity),
	}
}

func skuExtractor() FieldExtractor {
	return FieldExtractor{
		Field: constants.FieldSKU,
		Rules: []PatternRule{
			Rule("labelled", `(?i)\bSKU\s*(?:ID|No\.?|code)?\s*[:：]?\s*([A-Za-z0-9][A-Za-z0-9\-_./]{1,40})`, Group(1)),
		},
		Default: constants.NotAvailable,
	}
}

func productExtractor() FieldExtractor {
	return FieldExtractor{
		Field: constants.FieldProductName,
		Rules: []PatternRule{
			Rule("product_name", `(?i)\b(?:product\s*name|item\s*name)\s*[:：]\s*([^\n]+)`, Then(Group(1), cutItem)),
			Rule("product", `(?i)\b(?:product|item|products)\s*[:：]\s*([^\n]+)`, Then(Group(1), cutItem)),
		},
		Default: constants.NotAvailable,
	}
}

func sellerExtractor(defaultSeller string) FieldExtractor {
	return FieldExtractor{
		Field: constants.FieldSeller,
		Rules: []PatternRule{
			Rule("labelled", `(?i)\b(?:seller|sender|shop\s*name|from)\s*(?:name)?\s*[:：]\s*([^\n]+)`, Then(Group(1), cutContact)),
		},
		Default: defaultSeller,
	}
}

// nameExtractor accepts values that contain at least one letter.
func nameExtractor(labels string) FieldExtractor {
	hasLetter := func(v string) (string, bool) {
		v, ok := cutContact(v)
		if !ok || !strings.ContainsFunc(v, isLetter) {
			return "", false
		}
		return v, true
	}
	return FieldExtractor{
		Field: constants.FieldCustomerName,
		Rules: []PatternRule{
			Rule("labelled", `(?i)\b(?:`+labels+`)(?:'s)?\s*(?:name)?\s*[:：]\s*([^\n]+)`, Then(Group(1), hasLetter)),
			Rule("name_label", `(?i)\bname\s*[:：]\s*([^\n]+)`, Then(Group(1), hasLetter)),
		},
		Default: constants.NotAvailable,
	}
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f
}

func phoneProjection(m []string) (string, bool) {
	v := normalize.StripSeparators(m[1])
	digits := strings.Count(v, "*")
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return v, digits >= 9 && digits <= 13
}

// inferCourier returns the first courier whose keyword appears in text.
func (p *Profile) inferCourier(lower string) (string, bool) {
	for _, c := range p.Couriers {
		if containsAny(lower, c.Keywords) {
			return c.Courier, true
		}
	}
	if p.DefaultCourier != "" {
		return p.DefaultCourier, false
	}
	return constants.UnknownCourier, false
}

// isCashless reports whether the label carries a cashless keyword.
func (p *Profile) isCashless(lower string) bool {
	return containsAny(lower, p.CashlessKeywords)
}

var defaultCashlessKeywords = []string{"cashless", "non-cod", "non cod", "prepaid", "paid online", "online payment"}
