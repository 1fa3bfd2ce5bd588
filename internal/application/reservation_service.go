package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/pricing"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/notify"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/payment"
	redisinfra "github.com/sanosuguru/go-gear-rental/internal/infrastructure/redis"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/logger"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/metrics"
)

const (
	lockMaxRetries       = 3
	lockRetryDelay       = 100 * time.Millisecond
	defaultLockTTL       = 10 * time.Second
	defaultNotifyTimeout = 15 * time.Second
)

// ReservationOptions tunes the reservation service.
type ReservationOptions struct {
	OrderPrefix   string
	LockTTL       time.Duration
	NotifyTimeout time.Duration
	WebhookKey    string
}

type ReservationService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	productRepo     product.Repository
	discountRepo    discount.Repository
	lockManager     redisinfra.LockManagerInterface
	cache           redisinfra.AvailabilityCacheInterface
	calendar        *CalendarService
	notifier        Notifier
	gateway         PaymentGateway
	metrics         *metrics.Metrics
	opts            ReservationOptions
	notifyAsync     bool
}

// NewReservationService builds the checkout service. lockManager and cache
// may be nil.
func NewReservationService(
	txm transaction.Manager,
	rr reservation.Repository,
	pr product.Repository,
	dr discount.Repository,
	lm redisinfra.LockManagerInterface,
	cache redisinfra.AvailabilityCacheInterface,
	cal *CalendarService,
	opts ReservationOptions,
) *ReservationService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	return &ReservationService{
		txManager:       txm,
		reservationRepo: rr,
		productRepo:     pr,
		discountRepo:    dr,
		lockManager:     lm,
		cache:           cache,
		calendar:        cal,
		opts:            opts,
		notifyAsync:     true,
	}
}

func (s *ReservationService) WithNotifier(n Notifier) *ReservationService {
	s.notifier = n
	return s
}

func (s *ReservationService) WithPaymentGateway(g PaymentGateway) *ReservationService {
	s.gateway = g
	return s
}

func (s *ReservationService) WithMetrics(m *metrics.Metrics) *ReservationService {
	s.metrics = m
	return s
}

// CheckoutItem is a requested product and quantity.
type CheckoutItem struct {
	ProductID string
	Quantity  int
}

type CheckoutInput struct {
	Customer       reservation.Customer
	StartDate      time.Time
	Items          []CheckoutItem
	DiscountCode   string
	IdempotencyKey string
}

// Checkout books the requested items for the run starting on StartDate.
// Stock is re-verified under row locks inside the insert transaction, so two
// concurrent checkouts can never overbook a product. A repeated idempotency
// key returns the reservation created the first time.
func (s *ReservationService) Checkout(ctx context.Context, input CheckoutInput) (*reservation.Reservation, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		existing, err := s.reservationRepo.GetByIdempotencyKey(ctx, key)
		if err == nil {
			s.metrics.RecordReservation("replayed")
			return existing, nil
		}
		if !errors.Is(err, reservation.ErrReservationNotFound) {
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
	}

	if err := validateCheckout(input); err != nil {
		s.metrics.RecordReservation("invalid")
		return nil, err
	}
	w, err := s.calendar.WindowFor(input.StartDate)
	if err != nil {
		s.metrics.RecordReservation("invalid")
		return nil, err
	}
	ids := uniqueProductIDs(input.Items)

	if s.lockManager != nil {
		start := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.ProductsLockKey(ids), s.opts.LockTTL, lockMaxRetries, lockRetryDelay)
		if err != nil {
			s.metrics.RecordLock("acquire", "failed", time.Since(start))
			s.metrics.RecordReservation("lock_failed")
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				return nil, ErrLockContention
			}
			return nil, fmt.Errorf("acquire checkout lock: %w", err)
		}
		s.metrics.RecordLock("acquire", "success", time.Since(start))
		defer func() {
			if err := lock.Release(ctx); err != nil {
				logger.Warn("release checkout lock", zap.Error(err))
			}
		}()
	}

	r, err := s.checkoutTx(ctx, input, key, w, ids)
	if err != nil {
		if key != "" && errors.Is(err, reservation.ErrIdempotencyKeyAlreadyExists) {
			s.metrics.RecordReservation("replayed")
			return s.reservationRepo.GetByIdempotencyKey(ctx, key)
		}
		s.recordCheckoutFailure(err)
		return nil, err
	}

	s.metrics.RecordReservation("created")
	if r.DiscountCode != "" {
		s.metrics.RecordRedemption()
	}
	logger.Info("reservation created",
		zap.String("order_code", r.OrderCode),
		zap.String("window", r.Window.String()),
		zap.Int64("total", r.Total),
	)

	s.invalidateAvailability(ctx)
	s.attachPaymentSession(ctx, r)
	s.dispatch(orderMessage(EventReservationCreated, r))
	return r, nil
}

func (s *ReservationService) checkoutTx(ctx context.Context, input CheckoutInput, key string, w calendar.Window, ids []string) (*reservation.Reservation, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	products, err := s.productRepo.LockForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	byID := make(map[string]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	lines := make([]pricing.Line, 0, len(input.Items))
	for _, it := range input.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", pricing.ErrUnknownProduct, it.ProductID)
		}
		lines = append(lines, pricing.Line{Product: p, Quantity: it.Quantity})
	}

	current, err := s.reservationRepo.ListOverlapping(ctx, tx, w, reservation.NonConsumingStatuses)
	if err != nil {
		return nil, fmt.Errorf("list overlapping reservations: %w", err)
	}

	disc, stored, err := s.evaluateDiscountTx(ctx, tx, input.DiscountCode)
	if err != nil {
		return nil, err
	}

	b, err := pricing.Assemble(lines, w, current, disc)
	if err != nil {
		return nil, err
	}

	now := s.calendar.now().In(s.calendar.Location())
	seq, err := s.reservationRepo.NextOrderSequence(ctx, tx, reservation.SequencePeriod(now))
	if err != nil {
		return nil, fmt.Errorf("next order sequence: %w", err)
	}
	r := reservation.NewReservation(reservation.FormatOrderCode(s.opts.OrderPrefix, now, seq), input.Customer, w, b.Items(), key)
	b.ApplyTo(r)
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := s.reservationRepo.Create(ctx, tx, r); err != nil {
		return nil, err
	}
	if stored != nil {
		if err := s.discountRepo.IncrementUsage(ctx, tx, stored.ID); err != nil {
			if errors.Is(err, discount.ErrCodeNotRedeemable) {
				return nil, &InvalidDiscountError{Code: disc.Code, Reason: discount.ReasonUsageLimit}
			}
			return nil, fmt.Errorf("redeem discount code: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return r, nil
}

// evaluateDiscountTx locks and evaluates the code. stored is returned only
// for a valid code, which then has to be redeemed in the same transaction.
func (s *ReservationService) evaluateDiscountTx(ctx context.Context, tx transaction.Tx, code string) (discount.Result, *discount.Code, error) {
	normalized := discount.Normalize(code)
	if normalized == "" {
		return discount.None, nil, nil
	}
	stored, err := s.discountRepo.GetByCodeForUpdate(ctx, tx, normalized)
	if err != nil && !errors.Is(err, discount.ErrDiscountNotFound) {
		return discount.Result{}, nil, fmt.Errorf("get discount code: %w", err)
	}
	res := discount.Evaluate(normalized, stored, s.calendar.now())
	if !res.Valid {
		return res, nil, &InvalidDiscountError{Code: normalized, Reason: res.Reason}
	}
	return res, stored, nil
}

func (s *ReservationService) recordCheckoutFailure(err error) {
	switch {
	case errors.Is(err, pricing.ErrOverBooked):
		s.metrics.RecordReservation("overbooked")
	case errors.Is(err, ErrInvalidDiscount),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrNoItems),
		errors.Is(err, pricing.ErrUnknownProduct):
		s.metrics.RecordReservation("invalid")
	default:
		s.metrics.RecordReservation("error")
	}
}

// attachPaymentSession opens a payment page for the new reservation. Failures
// leave the reservation pending without a session.
func (s *ReservationService) attachPaymentSession(ctx context.Context, r *reservation.Reservation) {
	if s.gateway == nil {
		return
	}
	session, err := s.gateway.CreateSession(ctx, chargeRequest(r))
	if err != nil {
		logger.Warn("create payment session", zap.String("order_code", r.OrderCode), zap.Error(err))
		s.metrics.RecordPaymentSession("failed")
		return
	}
	if session == nil {
		s.metrics.RecordPaymentSession("skipped")
		return
	}
	r.Payment.Token = session.Token
	r.Payment.RedirectURL = session.RedirectURL
	r.UpdatedAt = time.Now()
	if err := s.reservationRepo.UpdateFromStatus(ctx, nil, r, reservation.StatusPending); err != nil {
		logger.Error("save payment session", zap.String("order_code", r.OrderCode), zap.Error(err))
		s.metrics.RecordPaymentSession("failed")
		return
	}
	s.metrics.RecordPaymentSession("created")
}

func chargeRequest(r *reservation.Reservation) payment.ChargeRequest {
	req := payment.ChargeRequest{
		OrderCode:     r.OrderCode,
		Amount:        r.Total,
		CustomerName:  r.Customer.Name,
		CustomerEmail: r.Customer.Email,
		CustomerPhone: r.Customer.Phone,
	}
	for _, it := range r.Items {
		req.Items = append(req.Items, payment.ChargeItem{
			ID:       it.ProductID,
			Name:     it.ProductName,
			Price:    it.PricePerRun,
			Quantity: it.Quantity,
		})
	}
	if r.DiscountAmount > 0 {
		req.Items = append(req.Items, payment.ChargeItem{
			ID:       "discount-" + r.DiscountCode,
			Name:     "Discount " + r.DiscountCode,
			Price:    -r.DiscountAmount,
			Quantity: 1,
		})
	}
	return req
}

// dispatch sends msg outside the request path. Failures are only logged.
func (s *ReservationService) dispatch(msg notify.Message) {
	if s.notifier == nil {
		return
	}
	send := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.NotifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, msg); err != nil {
			logger.Warn("order notification failed", zap.String("order_code", msg.OrderCode), zap.Error(err))
		}
	}
	if s.notifyAsync {
		go send()
		return
	}
	send()
}

func (s *ReservationService) invalidateAvailability(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("invalidate availability cache", zap.Error(err))
	}
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

func (s *ReservationService) GetByOrderCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByOrderCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// LookupByOrderCode is the customer-facing lookup. Order codes are sequential,
// so the caller must also present the email or phone given at checkout. A
// wrong contact reads as not found.
func (s *ReservationService) LookupByOrderCode(ctx context.Context, code, contact string) (*reservation.Reservation, error) {
	r, err := s.GetByOrderCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !r.Customer.HasContact(contact) {
		return nil, reservation.ErrReservationNotFound
	}
	return r, nil
}

func (s *ReservationService) ListReservations(ctx context.Context, filter reservation.ListFilter) ([]*reservation.Reservation, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.reservationRepo.List(ctx, filter)
}

// UpdateStatus sets any canonical status on a reservation (admin tooling).
func (s *ReservationService) UpdateStatus(ctx context.Context, id, status string) (*reservation.Reservation, error) {
	st, err := reservation.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	r, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == st {
		return r, nil
	}
	if err := r.SetStatus(st); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Update(ctx, nil, r); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, "admin", r)
	return r, nil
}

// HandlePaymentNotification verifies and applies a gateway callback.
// Reservations that already left pending only record the payment status.
// The write is guarded by the status that was read; if another writer moved
// the reservation first, the callback is applied once more to the fresh row.
func (s *ReservationService) HandlePaymentNotification(ctx context.Context, n payment.Notification) (*reservation.Reservation, error) {
	if s.opts.WebhookKey == "" {
		return nil, ErrWebhookUnavailable
	}
	if err := n.Verify(s.opts.WebhookKey); err != nil {
		return nil, err
	}
	const attempts = 2
	var err error
	for i := 0; i < attempts; i++ {
		var r *reservation.Reservation
		r, err = s.reservationRepo.GetByOrderCode(ctx, n.OrderID)
		if err != nil {
			return nil, err
		}
		read := r.Status
		changed := r.ApplyPayment(n.Outcome(), n.TransactionStatus, n.TransactionID, s.calendar.now())
		err = s.reservationRepo.UpdateFromStatus(ctx, nil, r, read)
		if errors.Is(err, reservation.ErrStatusChanged) {
			logger.Debug("reservation moved during payment notification",
				zap.String("order_code", r.OrderCode), zap.String("read_status", string(read)))
			continue
		}
		if err != nil {
			return nil, err
		}
		if changed {
			s.afterTransition(ctx, "webhook", r)
		}
		return r, nil
	}
	return nil, err
}

// CancelExpiredReservations cancels pending reservations older than
// expireAfter. One failing reservation does not stop the rest.
func (s *ReservationService) CancelExpiredReservations(ctx context.Context, expireAfter time.Duration) (int, error) {
	expired, err := s.reservationRepo.GetExpiredPending(ctx, expireAfter)
	if err != nil {
		return 0, fmt.Errorf("get expired reservations: %w", err)
	}
	count := 0
	for _, r := range expired {
		if err := r.Expire(); err != nil {
			logger.Debug("skip reservation that cannot expire",
				zap.String("order_code", r.OrderCode), zap.String("status", string(r.Status)), zap.Error(err))
			continue
		}
		err := s.reservationRepo.UpdateFromStatus(ctx, nil, r, reservation.StatusPending)
		if errors.Is(err, reservation.ErrStatusChanged) {
			logger.Debug("skip reservation that left pending", zap.String("order_code", r.OrderCode))
			continue
		}
		if err != nil {
			logger.Error("cancel expired reservation", zap.String("order_code", r.OrderCode), zap.Error(err))
			continue
		}
		s.metrics.RecordTransition("cleaner", string(r.Status))
		count++
	}
	if count > 0 {
		s.invalidateAvailability(ctx)
	}
	return count, nil
}

// LifecycleResult counts the transitions made by AdvanceLifecycle.
type LifecycleResult struct {
	Activated int
	Completed int
}

// AdvanceLifecycle starts confirmed rentals whose window has begun and
// completes active rentals whose window ended before today.
func (s *ReservationService) AdvanceLifecycle(ctx context.Context) (LifecycleResult, error) {
	today := s.calendar.Today()
	var res LifecycleResult

	activated, err := s.transitionDue(ctx, reservation.StatusConfirmed, reservation.DueByStart, reservation.StatusActive, today)
	res.Activated = activated
	if err != nil {
		return res, err
	}
	completed, err := s.transitionDue(ctx, reservation.StatusActive, reservation.DueByEnd, reservation.StatusCompleted, today)
	res.Completed = completed
	if err != nil {
		return res, err
	}
	if res.Activated+res.Completed > 0 {
		s.invalidateAvailability(ctx)
	}
	return res, nil
}

func (s *ReservationService) transitionDue(ctx context.Context, from reservation.Status, field reservation.DueField, to reservation.Status, today time.Time) (int, error) {
	due, err := s.reservationRepo.ListDueForTransition(ctx, from, field, today)
	if err != nil {
		return 0, fmt.Errorf("list %s reservations due: %w", from, err)
	}
	count := 0
	for _, r := range due {
		if err := r.SetStatus(to); err != nil {
			return count, err
		}
		err := s.reservationRepo.UpdateFromStatus(ctx, nil, r, from)
		if errors.Is(err, reservation.ErrStatusChanged) {
			logger.Debug("skip reservation that left "+string(from), zap.String("order_code", r.OrderCode))
			continue
		}
		if err != nil {
			logger.Error("advance reservation", zap.String("order_code", r.OrderCode), zap.Error(err))
			continue
		}
		s.metrics.RecordTransition("lifecycle", string(to))
		count++
	}
	return count, nil
}

func (s *ReservationService) afterTransition(ctx context.Context, source string, r *reservation.Reservation) {
	s.metrics.RecordTransition(source, string(r.Status))
	logger.Info("reservation status changed",
		zap.String("order_code", r.OrderCode),
		zap.String("status", string(r.Status)),
		zap.String("source", source),
	)
	s.invalidateAvailability(ctx)
	s.dispatch(orderMessage(EventStatusChanged, r))
}

func validateCheckout(input CheckoutInput) error {
	if len(input.Items) == 0 {
		return pricing.ErrNoItems
	}
	for _, it := range input.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return reservation.ErrProductIDRequired
		}
		if it.Quantity <= 0 {
			return pricing.ErrInvalidQuantity
		}
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		return reservation.ErrCustomerNameRequired
	}
	if strings.TrimSpace(input.Customer.Email) == "" && strings.TrimSpace(input.Customer.Phone) == "" {
		return reservation.ErrCustomerContactRequired
	}
	return nil
}

func uniqueProductIDs(items []CheckoutItem) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		ids = append(ids, it.ProductID)
	}
	return ids
}
