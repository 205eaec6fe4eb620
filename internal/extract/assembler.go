// Package extract turns raw AWB label text into a structured shipment record using
// ordered, per-platform pattern cascades.
package extract

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
	"github.com/joseph-ayodele/awb-extractor/internal/normalize"
)

// Result is an assembled record plus the diagnostics a reviewer needs.
type Result struct {
	Record      entity.AWBRecord
	Fingerprint string
	// Defaulted marks fields that fell back to their documented default.
	Defaulted map[constants.Field]bool
	// Rules names the rule that resolved each non-defaulted field.
	Rules map[constants.Field]string
	// Warnings holds the non-fatal FIELD_EXTRACTION_FAILURE and ADDRESS_REJECTED errors.
	Warnings []error
}

// DefaultedFields lists defaulted fields in record order.
func (r Result) DefaultedFields() []constants.Field {
	var out []constants.Field
	for _, f := range constants.AllFields {
		if r.Defaulted[f] {
			out = append(out, f)
		}
	}
	return out
}

// Status summarises the outcome for a successfully assembled document.
func (r Result) Status() constants.DocumentStatus {
	if len(r.Defaulted) > 0 {
		return constants.DocumentDegraded
	}
	return constants.DocumentSucceeded
}

// Assembler classifies a label, runs the platform profile and reconciles the record.
// It holds no mutable state and is safe for concurrent use.
type Assembler struct {
	detector *Detector
	profiles map[constants.Platform]*Profile
	logger   *slog.Logger
	now      func() time.Time
	loc      *time.Location
	prefixes []string
}

type Option func(*Assembler)

// WithLogger enables diagnostic tracing. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock sets the clock used for the ship-date default.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLocation sets the timezone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(a *Assembler) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithOrderYearPrefixes overrides the two-digit prefixes of the bare order-id heuristic.
func WithOrderYearPrefixes(prefixes []string) Option {
	return func(a *Assembler) {
		if len(prefixes) > 0 {
			a.prefixes = prefixes
		}
	}
}

func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		detector: NewDetector(),
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		loc:      time.UTC,
		prefixes: DefaultOrderYearPrefixes,
	}
	for _, o := range opts {
		o(a)
	}
	popts := ProfileOptions{OrderYearPrefixes: a.prefixes}
	a.profiles = map[constants.Platform]*Profile{
		constants.PlatformTikTok: TikTokProfile(popts),
		constants.PlatformShopee: ShopeeProfile(popts),
	}
	return a
}

// Classify exposes the platform detector.
func (a *Assembler) Classify(text string) constants.Platform {
	return a.detector.Classify(normalize.Text(text))
}

// Assemble returns a fully defaulted record or a typed error.
func (a *Assembler) Assemble(text string) (entity.AWBRecord, error) {
	res, err := a.AssembleDetailed(text)
	if err != nil {
		return entity.AWBRecord{}, err
	}
	return res.Record, nil
}

// AssembleDetailed is Assemble plus per-field diagnostics.
func (a *Assembler) AssembleDetailed(text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, common.NewAppError(common.CodeEmptyInput, "no text supplied", common.ErrEmptyInput)
	}
	norm := normalize.Text(text)

	platform := a.detector.Classify(norm)
	p, ok := a.profiles[platform]
	if !ok {
		a.logger.Debug("extract.classify.unknown", "bytes", len(norm))
		return Result{}, common.NewAppError(common.CodePlatformUnrecognized,
			"label does not match any supported marketplace", common.ErrPlatformUnrecognized)
	}

	res := Result{
		Fingerprint: normalize.Fingerprint(norm),
		Defaulted:   map[constants.Field]bool{},
		Rules:       map[constants.Field]string{},
	}
	rec := entity.NewAWBRecord(platform)
	rec.ID = entity.RecordID(res.Fingerprint)

	resolve := func(fe FieldExtractor) string {
		m, ok := fe.Extract(norm)
		if ok {
			res.matched(fe.Field, m.Rule)
		} else {
			a.defaulted(&res, fe.Field, m.Rule)
		}
		return m.Value
	}

	rec.OrderID = resolve(p.OrderID)
	rec.TrackingNumber = resolve(p.Tracking)

	if dt := resolve(p.ShipDate); dt != "" {
		rec.ShipDate, rec.ShipTime = splitDateTime(dt)
		if rec.ShipTime == constants.DefaultShipTime {
			a.defaulted(&res, constants.FieldShipTime, "")
		}
	} else {
		rec.ShipDate = a.now().In(a.loc).Format(isoDate)
		rec.ShipTime = constants.DefaultShipTime
		a.defaulted(&res, constants.FieldShipTime, "")
	}

	rec.CustomerName = resolve(p.Name)
	rec.CustomerPhone = resolve(p.Phone)

	addr := resolveAddress(norm)
	rec.CustomerAddress = addr.Value
	switch {
	case addr.Found:
		res.matched(constants.FieldCustomerAddress, addr.Stage)
	case addr.Rejected:
		res.Defaulted[constants.FieldCustomerAddress] = true
		res.Warnings = append(res.Warnings, common.NewAppError(common.CodeAddressRejected,
			fmt.Sprintf("address candidate from %s outside [%d,%d] characters", addr.Stage, constants.MinAddressLength, constants.MaxAddressLength),
			common.ErrAddressRejected))
		a.logger.Debug("extract.address.rejected", "stage", addr.Stage)
	default:
		a.defaulted(&res, constants.FieldCustomerAddress, "")
	}

	lower := strings.ToLower(norm)
	if courier, ok := p.inferCourier(lower); ok {
		rec.Courier = courier
		res.matched(constants.FieldCourier, "keyword")
	} else {
		rec.Courier = courier
		a.defaulted(&res, constants.FieldCourier, "")
	}

	a.resolvePayment(&res, &rec, p, norm, lower)

	rec.ProductName = resolve(p.Product)
	rec.SKU = resolve(p.SKU)
	qty, err := strconv.Atoi(resolve(p.Quantity))
	if err != nil || qty < 1 {
		qty = constants.DefaultQuantity
	}
	rec.Quantity = qty
	rec.Seller = resolve(p.Seller)

	if err := rec.Validate(); err != nil {
		a.logger.Error("extract.assemble.invalid", "platform", platform, "error", err)
		return Result{}, common.NewAppError("INTERNAL", "assembled record failed validation", fmt.Errorf("%w: %w", common.ErrInternal, err))
	}
	res.Record = rec

	a.logger.Debug("extract.assemble.ok",
		"platform", platform,
		"record_id", rec.ID.String(),
		"defaulted", len(res.Defaulted),
	)
	return res, nil
}

// resolvePayment applies the status rule: a cashless keyword always wins, otherwise
// COD only when a positive amount is present.
func (a *Assembler) resolvePayment(res *Result, rec *entity.AWBRecord, p *Profile, norm, lower string) {
	if p.isCashless(lower) {
		rec.PaymentStatus = constants.PaymentCashless
		rec.CODAmount = constants.DefaultCODAmount
		res.matched(constants.FieldPaymentStatus, "cashless_keyword")
		res.matched(constants.FieldCODAmount, "cashless_keyword")
		return
	}
	m, ok := p.CODAmount.Extract(norm)
	if ok {
		if amount, err := decimal.NewFromString(m.Value); err == nil && amount.IsPositive() {
			rec.PaymentStatus = constants.PaymentCOD
			rec.CODAmount = normalize.FormatAmount(amount)
			res.matched(constants.FieldPaymentStatus, m.Rule)
			res.matched(constants.FieldCODAmount, m.Rule)
			return
		}
	}
	rec.PaymentStatus = constants.PaymentCashless
	rec.CODAmount = constants.DefaultCODAmount
	a.defaulted(res, constants.FieldPaymentStatus, m.Rule)
	a.defaulted(res, constants.FieldCODAmount, m.Rule)
}

func (r *Result) matched(field constants.Field, rule string) {
	r.Rules[field] = rule
}

func (a *Assembler) defaulted(res *Result, field constants.Field, rule string) {
	res.Defaulted[field] = true
	msg := fmt.Sprintf("%s resolved to default", field)
	if strings.HasSuffix(rule, ":rejected") {
		msg = fmt.Sprintf("%s candidate from %s rejected", field, strings.TrimSuffix(rule, ":rejected"))
	}
	res.Warnings = append(res.Warnings, common.NewAppError(common.CodeFieldExtractionFailure, msg, common.ErrFieldExtraction))
	a.logger.Debug("extract.field.default", "field", field, "rule", rule)
}
