package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	"github.com/oksasatya/go-commerce-api/pkg/mailer"
)

var (
	ErrNoOrderItems   = errors.New("no order items")
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderForbidden = errors.New("not authorized to view this order")
)

// Publisher is the async job queue capability (satisfied by helpers.RabbitPublisher).
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// OrderService owns order intake and fulfilment state.
type OrderService struct {
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Pub      Publisher
	Logger   *logrus.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, pub Publisher, logger *logrus.Logger) *OrderService {
	return &OrderService{Orders: orders, Products: products, Pub: pub, Logger: logger}
}

// OrderItemInput is one requested line item.
type OrderItemInput struct {
	ProductID string
	Name      string
	Qty       int
	ImageURL  string
	Price     float64
}

// CreateOrderInput is the order intake payload.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress entity.ShippingAddress
	PaymentMethod   string
	TaxPrice        float64
	ShippingPrice   float64
	TotalPrice      float64
}

// Create stores a new order for the user, decrements product stock and queues
// a confirmation email. Stock decrement and the email are best effort; the
// stored order is the source of truth.
func (s *OrderService) Create(ctx context.Context, user *entity.User, in CreateOrderInput) (*entity.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoOrderItems
	}

	o := &entity.Order{
		UserID:          user.ID,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
	}
	for _, it := range in.Items {
		o.Items = append(o.Items, entity.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Qty,
			ImageURL:  it.ImageURL,
			Price:     it.Price,
		})
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, err
	}

	for _, it := range o.Items {
		if err := s.Products.DecrementStock(ctx, it.ProductID, it.Qty); err != nil {
			s.Logger.WithError(err).WithField("product_id", it.ProductID).Warn("stock decrement failed")
		}
	}

	s.queueConfirmation(ctx, user, o)
	return o, nil
}

func (s *OrderService) queueConfirmation(ctx context.Context, user *entity.User, o *entity.Order) {
	if s.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:      user.Email,
		Subject: "Your order has been received",
		Text: fmt.Sprintf("Hi %s,\n\nwe received your order %s for a total of %.2f. "+
			"We will let you know once it ships.", user.Name, o.ID, o.TotalPrice),
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Warn("order confirmation enqueue failed")
	}
}

// Get loads an order; only its owner or an admin may see it.
func (s *OrderService) Get(ctx context.Context, orderID string, caller *entity.User) (*entity.Order, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.UserID != caller.ID && !caller.IsAdmin {
		return nil, ErrOrderForbidden
	}
	return o, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID string) ([]entity.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]entity.Order, error) {
	return s.Orders.ListAll(ctx)
}

// MarkDelivered flips the order to delivered; cash-on-delivery orders are
// also marked paid at that point.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID string) (*entity.Order, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	now := time.Now()
	o.IsDelivered = true
	o.DeliveredAt = &now
	if o.PaymentMethod == entity.PaymentCOD && !o.IsPaid {
		o.IsPaid = true
		o.PaidAt = &now
	}
	if err := s.Orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
