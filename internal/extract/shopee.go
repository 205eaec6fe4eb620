package extract

import "github.com/joseph-ayodele/awb-extractor/constants"

// ShopeeProfile builds the Shopee rule set.
func ShopeeProfile(opts ProfileOptions) *Profile {
	return &Profile{
		Platform: constants.PlatformShopee,
		OrderID:  orderIDExtractor(constants.PlatformShopee, opts.OrderYearPrefixes),
		Tracking: FieldExtractor{
			Field: constants.FieldTrackingNumber,
			Rules: []PatternRule{
				trackingLabelRule(),
				Rule("spx", `\b(SPXMY\d{9,14}[A-Z]?)\b`, Compact(1)),
				Rule("generic_my", `\b(MY[A-Z]{1,4}\d{8,15}[A-Z]?)\b`, Compact(1)),
				Rule("ninja_van", `\b(NVMY[A-Z0-9]{8,16})\b`, Compact(1)),
			},
			Default: constants.NotAvailable,
		},
		ShipDate: dateExtractor(),
		Name:     nameExtractor(`recipient|buyer|penerima|receiver`),
		Phone: FieldExtractor{
			Field: constants.FieldCustomerPhone,
			Rules: []PatternRule{
				Rule("labelled", `(?i)\b(?:phone|tel|hp|mobile|no\.?\s*telefon)\s*(?:no\.?|number)?\s*[:：]?\s*(\+?60[\d \-]{8,13}\d)`, phoneProjection),
				Rule("bare", `(?:^|[\s:(])(\+?601\d(?:[ \-]?\d){7,9})\b`, phoneProjection),
			},
			Default: constants.NotAvailable,
		},
		CODAmount: codAmountExtractor(),
		Product:   productExtractor(),
		SKU:       skuExtractor(),
		Quantity:  quantityExtractor(),
		Seller:    sellerExtractor("Shopee Seller"),
		Couriers: []CourierRule{
			{Courier: "SPX Express", Keywords: []string{"spxmy", "spx express", "shopee xpress", "shopee express"}},
			{Courier: "J&T Express", Keywords: []string{"j&t", "jnt express", "j & t"}},
			{Courier: "Ninja Van", Keywords: []string{"ninja van", "ninjavan", "nvmy"}},
			{Courier: "Pos Laju", Keywords: []string{"pos laju", "poslaju", "pos malaysia"}},
			{Courier: "Flash Express", Keywords: []string{"flash express"}},
			{Courier: "DHL eCommerce", Keywords: []string{"dhl"}},
		},
		DefaultCourier:   "Shopee Xpress",
		CashlessKeywords: defaultCashlessKeywords,
	}
}
