package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"travelbuddy/internal/models"
	"travelbuddy/internal/observability"
	"travelbuddy/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CheckoutCompletedEvent is the gateway event that confirms a checkout.
const CheckoutCompletedEvent = "checkout.session.completed"

// Checkout metadata keys. The gateway echoes them back on confirmation.
const (
	MetadataSubscriptionID = "subscriptionId"
	MetadataTravelerID     = "travelerId"
	MetadataPaymentID      = "paymentId"
)

// CheckoutRequest describes the payment the gateway should collect.
type CheckoutRequest struct {
	SubscriptionID uint
	TravelerID     uint
	PaymentID      uint
	TransactionID  string
	PlanName       string
	Amount         float64
	CustomerEmail  string
}

// Metadata returns the opaque values the gateway must send back.
func (r CheckoutRequest) Metadata() map[string]string {
	return map[string]string{
		MetadataSubscriptionID: strconv.FormatUint(uint64(r.SubscriptionID), 10),
		MetadataTravelerID:     strconv.FormatUint(uint64(r.TravelerID), 10),
		MetadataPaymentID:      strconv.FormatUint(uint64(r.PaymentID), 10),
	}
}

// CheckoutProvider opens a payment session and returns the URL to send the traveler to.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
}

// RedirectCheckout sends travelers to a hosted payment page, passing the
// payment details as query parameters.
type RedirectCheckout struct {
	CheckoutURL string
	SuccessURL  string
	CancelURL   string
	Currency    string
}

// CreateCheckout implements CheckoutProvider.
func (r RedirectCheckout) CreateCheckout(_ context.Context, req CheckoutRequest) (string, error) {
	u, err := url.Parse(r.CheckoutURL)
	if err != nil {
		return "", fmt.Errorf("parse checkout url: %w", err)
	}
	q := u.Query()
	for k, v := range req.Metadata() {
		q.Set(k, v)
	}
	q.Set("transactionId", req.TransactionID)
	q.Set("amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	q.Set("currency", r.Currency)
	q.Set("plan", req.PlanName)
	q.Set("email", req.CustomerEmail)
	q.Set("success_url", r.SuccessURL)
	q.Set("cancel_url", r.CancelURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CheckoutSession is returned to the traveler after subscribing.
type CheckoutSession struct {
	SubscriptionID uint    `json:"subscription_id"`
	PaymentID      uint    `json:"payment_id"`
	TransactionID  string  `json:"transaction_id"`
	Amount         float64 `json:"amount"`
	PaymentURL     string  `json:"payment_url"`
}

// CheckoutEvent is a payment gateway notification.
type CheckoutEvent struct {
	Type string `json:"type"`
	Data struct {
		Object CheckoutEventSession `json:"object"`
	} `json:"data"`

	raw []byte
}

// CheckoutEventSession is the checkout session carried by a CheckoutEvent.
type CheckoutEventSession struct {
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// ParseCheckoutEvent decodes a gateway notification, keeping the session
// payload for the payment record.
func ParseCheckoutEvent(body []byte) (*CheckoutEvent, error) {
	var event CheckoutEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, models.NewValidationError("Invalid payment event payload")
	}
	var envelope struct {
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		event.raw = envelope.Data.Object
	}
	return &event, nil
}

// SubscriptionService runs the subscription purchase flow.
type SubscriptionService struct {
	store    repository.Store
	checkout CheckoutProvider
	log      *observability.DomainLogger
	now      func() time.Time
}

// NewSubscriptionService returns a new SubscriptionService.
func NewSubscriptionService(store repository.Store, checkout CheckoutProvider) *SubscriptionService {
	return &SubscriptionService{
		store:    store,
		checkout: checkout,
		log:      observability.NewDomainLogger("subscription"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe opens a PENDING subscription with an UNPAID payment and returns
// where the traveler should pay.
func (s *SubscriptionService) Subscribe(ctx context.Context, identity models.Identity, planID uint) (*CheckoutSession, error) {
	traveler, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	plan, err := s.store.SubscriptionPlans().GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	open, err := s.store.Subscriptions().FindOpenByTraveler(ctx, traveler.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, models.NewConflictError("You already have an active or pending subscription")
	}

	start := s.now()
	sub := &models.Subscription{
		TravelerID:         traveler.ID,
		SubscriptionPlanID: plan.ID,
		Status:             models.SubscriptionStatusPending,
		Amount:             plan.Price,
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, plan.DurationInDays),
	}
	payment := &models.Payment{
		TravelerID:    traveler.ID,
		Amount:        plan.Price,
		TransactionID: "TravelBuddy-" + uuid.NewString(),
		Status:        models.PaymentStatusUnpaid,
	}
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Subscriptions().Create(ctx, sub); err != nil {
			return err
		}
		payment.SubscriptionID = sub.ID
		return tx.Payments().Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	observability.SubscriptionEvents.WithLabelValues("created").Inc()

	paymentURL, err := s.checkout.CreateCheckout(ctx, CheckoutRequest{
		SubscriptionID: sub.ID,
		TravelerID:     traveler.ID,
		PaymentID:      payment.ID,
		TransactionID:  payment.TransactionID,
		PlanName:       plan.Name,
		Amount:         plan.Price,
		CustomerEmail:  traveler.Email,
	})
	if err != nil {
		s.log.LogError(ctx, err, "create_checkout")
		return nil, models.NewInternalError(err)
	}

	s.log.LogEvent(ctx, "subscription opened", map[string]any{
		"subscription_id": sub.ID,
		"payment_id":      payment.ID,
		"traveler_id":     traveler.ID,
		"plan_id":         plan.ID,
	})
	return &CheckoutSession{
		SubscriptionID: sub.ID,
		PaymentID:      payment.ID,
		TransactionID:  payment.TransactionID,
		Amount:         payment.Amount,
		PaymentURL:     paymentURL,
	}, nil
}

// HandleCheckoutEvent applies a gateway notification. Events other than a
// completed checkout are logged and ignored.
func (s *SubscriptionService) HandleCheckoutEvent(ctx context.Context, event *CheckoutEvent) (err error) {
	if event.Type != CheckoutCompletedEvent {
		s.log.LogEvent(ctx, "unhandled payment event", map[string]any{"type": event.Type})
		return nil
	}

	ctx, span := observability.StartServiceSpan(ctx, "SubscriptionService", "HandleCheckoutEvent")
	defer func() { span.End(err) }()

	meta := event.Data.Object.Metadata
	subID, err := metadataID(meta, MetadataSubscriptionID)
	if err != nil {
		return err
	}
	travelerID, err := metadataID(meta, MetadataTravelerID)
	if err != nil {
		return err
	}
	paymentID, err := metadataID(meta, MetadataPaymentID)
	if err != nil {
		return err
	}
	paid := event.Data.Object.PaymentStatus == "paid"

	applied := false
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		sub, err := tx.Subscriptions().LockByID(ctx, subID)
		if err != nil {
			return err
		}
		payment, err := tx.Payments().GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if sub.TravelerID != travelerID || payment.SubscriptionID != sub.ID {
			return models.NewValidationError("Payment event metadata does not match the subscription")
		}
		if sub.Status != models.SubscriptionStatusPending {
			// redelivered event
			return nil
		}

		paymentStatus := models.PaymentStatusUnpaid
		if paid {
			paymentStatus = models.PaymentStatusPaid
			start := s.now()
			if err := tx.Subscriptions().Activate(ctx, sub.ID, start, start.Add(sub.EndDate.Sub(sub.StartDate))); err != nil {
				return err
			}
		}
		if err := tx.Payments().MarkStatus(ctx, payment.ID, paymentStatus, datatypes.JSON(event.raw)); err != nil {
			return err
		}
		if err := tx.Travelers().SetSubscribed(ctx, travelerID, paid); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil || !applied {
		return err
	}

	if paid {
		observability.SubscriptionEvents.WithLabelValues("activated").Inc()
		s.log.LogTransition(ctx, "subscription", subID,
			string(models.SubscriptionStatusPending), string(models.SubscriptionStatusActive), nil)
	} else {
		observability.SubscriptionEvents.WithLabelValues("payment_unpaid").Inc()
		s.log.LogEvent(ctx, "checkout completed without payment", map[string]any{"subscription_id": subID})
	}
	return nil
}

func metadataID(meta map[string]string, key string) (uint, error) {
	v, err := strconv.ParseUint(meta[key], 10, 64)
	if err != nil || v == 0 {
		return 0, models.NewValidationError("Payment event is missing " + key)
	}
	return uint(v), nil
}

// GetMine returns the caller's most recent subscription, or nil.
func (s *SubscriptionService) GetMine(ctx context.Context, identity models.Identity) (*models.Subscription, error) {
	traveler, err := travelerFor(ctx, s.store.Travelers(), identity)
	if err != nil {
		return nil, err
	}
	return s.store.Subscriptions().LatestByTraveler(ctx, traveler.ID)
}

// Get returns one subscription.
func (s *SubscriptionService) Get(ctx context.Context, id uint) (*models.Subscription, error) {
	return s.store.Subscriptions().GetByID(ctx, id)
}

// ListActive returns ACTIVE subscriptions.
func (s *SubscriptionService) ListActive(ctx context.Context, opts models.ListOptions) ([]models.Subscription, int64, error) {
	return s.store.Subscriptions().ListByStatus(ctx, models.SubscriptionStatusActive, opts)
}

// ExpireEnded expires ACTIVE subscriptions past their end date and clears
// the subscription flag of their travelers. It returns the affected travelers.
func (s *SubscriptionService) ExpireEnded(ctx context.Context) ([]uint, error) {
	var travelerIDs []uint
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		ids, err := tx.Subscriptions().ExpireEnded(ctx, s.now())
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.Travelers().SetSubscribed(ctx, id, false); err != nil {
				return err
			}
		}
		travelerIDs = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(travelerIDs) > 0 {
		observability.SubscriptionEvents.WithLabelValues("expired").Add(float64(len(travelerIDs)))
		s.log.LogEvent(ctx, "subscriptions expired", map[string]any{"travelers": len(travelerIDs)})
	}
	return travelerIDs, nil
}
