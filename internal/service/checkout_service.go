package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/gateway"
	"github.com/ankitsaini000/rwew-sub007/internal/logger"
	"github.com/ankitsaini000/rwew-sub007/internal/models"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
	"github.com/ankitsaini000/rwew-sub007/internal/repository"
)

// CheckoutRepository is the storage dependency of CheckoutService.
type CheckoutRepository interface {
	Create(ctx context.Context, order *models.CheckoutOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CheckoutOrder, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.CheckoutOrder, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CheckoutOrder, error)
}

// PaymentGateway creates gateway orders and checks confirmation signatures.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*gateway.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// MethodConfirmer flips a payment method's verification once the gateway
// confirms it.
type MethodConfirmer interface {
	ConfirmPaymentMethod(ctx context.Context, userID uuid.UUID, role, method string, ok bool) (*models.VerificationRecord, error)
}

// WebhookInput is the gateway's payment confirmation callback payload.
type WebhookInput struct {
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
	Status         string `json:"status"`
}

// CheckoutService creates gateway orders and settles them on webhook.
type CheckoutService struct {
	repo      CheckoutRepository
	gateway   PaymentGateway
	offers    ReviewOfferGetter
	users     UserGetter
	confirmer MethodConfirmer
}

func NewCheckoutService(repo CheckoutRepository, gw PaymentGateway, offers ReviewOfferGetter, users UserGetter, confirmer MethodConfirmer) *CheckoutService {
	return &CheckoutService{
		repo:      repo,
		gateway:   gw,
		offers:    offers,
		users:     users,
		confirmer: confirmer,
	}
}

// CreateOfferOrder opens a gateway order to pay an accepted offer.
// Amount is derived from the agreed price, in the currency's minor unit.
func (s *CheckoutService) CreateOfferOrder(ctx context.Context, userID, offerID uuid.UUID) (*models.CheckoutOrder, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrOfferNotFound) {
			return nil, apperror.ErrOfferNotFound
		}
		return nil, err
	}
	if !offer.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	if offer.Status != models.OfferStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "only an accepted offer can be paid")
	}

	amount := int64(math.Round(offer.Price * 100))
	receipt := "offer_" + offer.ID.String()

	gwOrder, err := s.gateway.CreateOrder(ctx, amount, offer.Currency, receipt, map[string]string{
		"offer_id": offer.ID.String(),
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDelivery, "payment gateway order failed")
	}

	order := &models.CheckoutOrder{
		UserID:         userID,
		OfferID:        &offer.ID,
		Purpose:        models.CheckoutPurposeOfferPayment,
		GatewayOrderID: gwOrder.ID,
		Amount:         amount,
		Currency:       offer.Currency,
		Receipt:        receipt,
		Status:         models.CheckoutStatusCreated,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateMethodVerificationOrder opens a nominal gateway order used only to
// confirm that a submitted payment method can transact. The webhook settles
// the verification sub-status.
func (s *CheckoutService) CreateMethodVerificationOrder(ctx context.Context, userID uuid.UUID, method string) (*models.CheckoutOrder, error) {
	if method != models.VerificationFieldUPI && method != models.VerificationFieldCard {
		return nil, apperror.New(apperror.ErrCodeValidation, "unknown payment method: "+method)
	}

	// One rupee charge, refunded by the gateway after confirmation.
	const verificationAmount = int64(100)
	receipt := fmt.Sprintf("pmv_%s_%s", method, userID)

	gwOrder, err := s.gateway.CreateOrder(ctx, verificationAmount, "INR", receipt, map[string]string{
		"purpose": models.CheckoutPurposeMethodVerification,
		"method":  method,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDelivery, "payment gateway order failed")
	}

	order := &models.CheckoutOrder{
		UserID:         userID,
		Purpose:        models.CheckoutPurposeMethodVerification,
		Method:         &method,
		GatewayOrderID: gwOrder.ID,
		Amount:         verificationAmount,
		Currency:       "INR",
		Receipt:        receipt,
		Status:         models.CheckoutStatusCreated,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// HandleWebhook settles an order from the gateway's signed confirmation.
// A method verification order additionally flips the user's payment method
// sub-status, which is how payment verification completes.
func (s *CheckoutService) HandleWebhook(ctx context.Context, in WebhookInput) error {
	if !s.gateway.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return apperror.New(apperror.ErrCodeUnauthorized, "webhook signature mismatch")
	}

	order, err := s.repo.GetByGatewayOrderID(ctx, in.GatewayOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrCheckoutOrderNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "checkout order not found")
		}
		return err
	}
	if order.Status != models.CheckoutStatusCreated {
		// Gateways retry webhooks; a settled order is not an error.
		logger.Log.WithField("order_id", order.ID).Debug("checkout: webhook for settled order ignored")
		return nil
	}

	paid := in.Status == "paid" || in.Status == "captured"

	// Flip the payment method before settling the order. The settled order
	// short-circuits retried webhooks above, so a confirmation that fails
	// after settling would never get another chance.
	if order.Purpose == models.CheckoutPurposeMethodVerification && order.Method != nil {
		user, err := s.users.GetByID(ctx, order.UserID)
		if err != nil {
			return err
		}
		if _, err := s.confirmer.ConfirmPaymentMethod(ctx, order.UserID, user.Role, *order.Method, paid); err != nil {
			return err
		}
	}

	if paid {
		if err := s.repo.MarkPaid(ctx, order.ID, in.PaymentID); err != nil {
			return err
		}
	} else {
		if err := s.repo.MarkFailed(ctx, order.ID); err != nil {
			return err
		}
	}

	logger.Log.WithField("order_id", order.ID).WithField("paid", paid).Info("checkout: webhook settled")
	return nil
}

// Get returns one checkout order to its owner or an admin.
func (s *CheckoutService) Get(ctx context.Context, orderID, callerID uuid.UUID, callerRole string) (*models.CheckoutOrder, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrCheckoutOrderNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "checkout order not found")
		}
		return nil, err
	}
	if order.UserID != callerID && callerRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}

// List returns the caller's checkout orders.
func (s *CheckoutService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CheckoutOrder, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListForUser(ctx, userID, limit, offset)
}
