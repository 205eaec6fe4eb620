package extract

import "github.com/joseph-ayodele/awb-extractor/constants"

// TikTokProfile builds the TikTok Shop rule set.
func TikTokProfile(opts ProfileOptions) *Profile {
	return &Profile{
		Platform: constants.PlatformTikTok,
		OrderID:  orderIDExtractor(constants.PlatformTikTok, opts.OrderYearPrefixes),
		Tracking: FieldExtractor{
			Field: constants.FieldTrackingNumber,
			Rules: []PatternRule{
				trackingLabelRule(),
				Rule("pos_malaysia", `\b(MYPM\d{9,13})\b`, Compact(1)),
				Rule("ninja_van", `\b(NVMY[A-Z0-9]{8,16})\b`, Compact(1)),
				Rule("dhl_ecommerce", `\b(MYEC[A-Z0-9]{8,16})\b`, Compact(1)),
				Rule("spx", `\b(SPXMY\d{9,14}[A-Z]?)\b`, Compact(1)),
				Rule("generic_my", `\b(MY[A-Z]{1,4}\d{8,15}[A-Z]?)\b`, Compact(1)),
			},
			Default: constants.NotAvailable,
		},
		ShipDate: dateExtractor(),
		Name:     nameExtractor(`receiver|recipient|buyer|ship\s*to|deliver\s*to`),
		Phone: FieldExtractor{
			Field: constants.FieldCustomerPhone,
			Rules: []PatternRule{
				Rule("labelled", `(?i)\b(?:phone|tel|hp|mobile|contact)\s*(?:no\.?|number)?\s*[:：]?\s*(\(?\+?6?0\)?[ \-]?[\d*][\d* \-]{6,14}[\d*])`, phoneProjection),
				Rule("masked", `(\(\+60\)\s?[\d*]{7,12})`, phoneProjection),
				Rule("bare", `(?:^|[\s:(])(\+?601\d(?:[ \-]?\d){7,9})\b`, phoneProjection),
			},
			Default: constants.NotAvailable,
		},
		CODAmount: codAmountExtractor(),
		Product:   productExtractor(),
		SKU:       skuExtractor(),
		Quantity:  quantityExtractor(),
		Seller:    sellerExtractor("TikTok Shop Seller"),
		Couriers: []CourierRule{
			{Courier: "J&T Express", Keywords: []string{"j&t", "jnt express", "j & t"}},
			{Courier: "Ninja Van", Keywords: []string{"ninja van", "ninjavan", "nvmy"}},
			{Courier: "Pos Laju", Keywords: []string{"pos laju", "poslaju", "pos malaysia", "mypm"}},
			{Courier: "Flash Express", Keywords: []string{"flash express"}},
			{Courier: "DHL eCommerce", Keywords: []string{"dhl"}},
			{Courier: "City-Link Express", Keywords: []string{"city-link", "citylink"}},
			{Courier: "SPX Express", Keywords: []string{"spx"}},
		},
		DefaultCourier:   "TikTok Shop Logistics",
		CashlessKeywords: defaultCashlessKeywords,
	}
}
