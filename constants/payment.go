package constants

// PaymentStatus is how the parcel is paid for.
type PaymentStatus string

const (
	PaymentCOD      PaymentStatus = "COD"
	PaymentCashless PaymentStatus = "CASHLESS"
)

// Currency appended to every COD amount.
const Currency = "MYR"
