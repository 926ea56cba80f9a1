package cart

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nerakcos/storefront-api/pkg/models"
)

// Cart errors. Handlers map these onto 400/404 responses.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("out of stock")
	ErrInvalidQuantity   = errors.New("valid quantity required")
	ErrItemNotFound      = errors.New("item not in cart")
	ErrEmptyCart         = errors.New("cart is empty")
)

// Catalog is the read side of the product catalog. A missing product is
// reported as mongo.ErrNoDocuments.
type Catalog interface {
	ProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error)
}

// GuestStore holds session-keyed anonymous cart lines.
type GuestStore interface {
	Lines(ctx context.Context, sessionID string) ([]models.GuestCartLine, error)
	Increment(ctx context.Context, sessionID string, productID bson.ObjectID, quantity int) error
	SetQuantity(ctx context.Context, sessionID string, productID bson.ObjectID, quantity int) error
	Remove(ctx context.Context, sessionID string, productID bson.ObjectID) error
	Clear(ctx context.Context, sessionID string) error
}

// OrderStore holds user cart lines (pending orders) and order history.
// MergeGuestLines, MarkAllPendingPaid and InsertPaidOrders are atomic: they
// either apply completely or leave the store untouched.
type OrderStore interface {
	PendingByUser(ctx context.Context, userID bson.ObjectID) ([]models.Order, error)
	UpsertPendingLine(ctx context.Context, userID, productID bson.ObjectID, quantity int, unitPrice float64) error
	SetPendingQuantity(ctx context.Context, userID, orderID bson.ObjectID, quantity int, unitPrice float64) error
	DeletePendingLine(ctx context.Context, userID, orderID bson.ObjectID) error
	MergeGuestLines(ctx context.Context, userID bson.ObjectID, sessionID string, lines []models.PricedLine) error
	MarkAllPendingPaid(ctx context.Context, userID bson.ObjectID) (bson.ObjectID, int, error)
	InsertPaidOrders(ctx context.Context, lines []models.PricedLine) (bson.ObjectID, error)
}

// Service is the cart reconciliation engine. Every operation takes the
// resolved identity plus the stale guest session (if the request authenticated
// while still carrying a guest cookie) and performs the guest-to-user merge
// before touching the cart, so callers never observe a partially merged state.
type Service struct {
	guest   GuestStore
	orders  OrderStore
	catalog Catalog
}

func NewService(guest GuestStore, orders OrderStore, catalog Catalog) *Service {
	return &Service{guest: guest, orders: orders, catalog: catalog}
}

// reconcile runs the one-time guest-to-user merge when an authenticated
// request still carries a guest session. Idempotent: the merge drains the
// guest side, and the store skips sessions it has already folded in, so a
// second call applies nothing.
func (s *Service) reconcile(ctx context.Context, id Identity, staleSession string) error {
	user, ok := id.(User)
	if !ok || staleSession == "" {
		return nil
	}
	return s.merge(ctx, user.ID, staleSession)
}

func (s *Service) merge(ctx context.Context, userID bson.ObjectID, sessionID string) error {
	lines, err := s.guest.Lines(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	priced := make([]models.PricedLine, 0, len(lines))
	for _, g := range lines {
		product, err := s.catalog.ProductByID(ctx, g.ProductID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Product withdrawn since the guest added it; the line has
			// nothing left to merge into.
			continue
		}
		if err != nil {
			return err
		}
		priced = append(priced, models.PricedLine{
			ProductID: g.ProductID,
			Quantity:  g.Quantity,
			UnitPrice: product.Price,
		})
	}

	// All-or-nothing: a failure here leaves the guest lines intact for retry.
	// The store marks the session merged inside the same transaction, so if
	// the Clear below fails the retry skips the upserts and only redoes the
	// deletion, never doubling quantities.
	if err := s.orders.MergeGuestLines(ctx, userID, sessionID, priced); err != nil {
		return err
	}
	return s.guest.Clear(ctx, sessionID)
}

// Lines returns the resolved cart's line set, merging first if needed. User
// lines expose the stored price snapshot; guest totals are derived from the
// current catalog price and never stored.
func (s *Service) Lines(ctx context.Context, id Identity, staleSession string) ([]models.CartLineView, error) {
	if err := s.reconcile(ctx, id, staleSession); err != nil {
		return nil, err
	}

	switch owner := id.(type) {
	case User:
		orders, err := s.orders.PendingByUser(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		views := make([]models.CartLineView, 0, len(orders))
		for _, o := range orders {
			view := models.CartLineView{
				ID:        o.ID.Hex(),
				ProductID: o.ProductID.Hex(),
				Quantity:  o.Quantity,
				Total:     o.TotalPrice,
				Status:    o.Status,
			}
			if product, err := s.catalog.ProductByID(ctx, o.ProductID); err == nil {
				view.Name = product.Name
				view.Price = product.Price
				view.Image = product.PrimaryImage()
			} else if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, err
			}
			views = append(views, view)
		}
		return views, nil

	case Guest:
		lines, err := s.guest.Lines(ctx, owner.SessionID)
		if err != nil {
			return nil, err
		}
		views := make([]models.CartLineView, 0, len(lines))
		for _, g := range lines {
			product, err := s.catalog.ProductByID(ctx, g.ProductID)
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			if err != nil {
				return nil, err
			}
			views = append(views, models.CartLineView{
				ID:        g.ProductID.Hex(),
				ProductID: g.ProductID.Hex(),
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  g.Quantity,
				Total:     product.Price * float64(g.Quantity),
				Image:     product.PrimaryImage(),
			})
		}
		return views, nil
	}
	return nil, nil
}

// Add upserts a line for the product into the resolved cart and returns the
// cart's total item count. The stock check is advisory (read-then-decide);
// concurrent adds may both pass against the same stock level.
func (s *Service) Add(ctx context.Context, id Identity, staleSession string, productID bson.ObjectID, quantity int) (int, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}

	product, err := s.catalog.ProductByID(ctx, productID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}
	if !product.HasStock(quantity) {
		return 0, ErrInsufficientStock
	}

	if err := s.reconcile(ctx, id, staleSession); err != nil {
		return 0, err
	}

	switch owner := id.(type) {
	case User:
		if err := s.orders.UpsertPendingLine(ctx, owner.ID, productID, quantity, product.Price); err != nil {
			return 0, err
		}
	case Guest:
		if err := s.guest.Increment(ctx, owner.SessionID, productID, quantity); err != nil {
			return 0, err
		}
	}
	return s.count(ctx, id)
}

// UpdateQuantity sets a line's quantity within the resolved cart. The lookup
// is cart-scoped: an id belonging to another owner is a not-found, so nothing
// leaks across carts. The line is located before the quantity is validated,
// so an unknown id answers not-found even when the quantity is also bad.
func (s *Service) UpdateQuantity(ctx context.Context, id Identity, staleSession, itemID string, quantity int) error {
	if err := s.reconcile(ctx, id, staleSession); err != nil {
		return err
	}

	switch owner := id.(type) {
	case User:
		orderID, err := bson.ObjectIDFromHex(itemID)
		if err != nil {
			return ErrItemNotFound
		}
		line, err := s.pendingLine(ctx, owner.ID, orderID)
		if err != nil {
			return err
		}
		if quantity < 1 {
			return ErrInvalidQuantity
		}
		product, err := s.catalog.ProductByID(ctx, line.ProductID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		err = s.orders.SetPendingQuantity(ctx, owner.ID, orderID, quantity, product.Price)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrItemNotFound
		}
		return err

	case Guest:
		productID, err := s.guestLine(ctx, owner.SessionID, itemID)
		if err != nil {
			return err
		}
		if quantity < 1 {
			return ErrInvalidQuantity
		}
		return s.guest.SetQuantity(ctx, owner.SessionID, productID, quantity)
	}
	return nil
}

// Remove deletes a line from the resolved cart; cart-scoped like
// UpdateQuantity.
func (s *Service) Remove(ctx context.Context, id Identity, staleSession, itemID string) error {
	if err := s.reconcile(ctx, id, staleSession); err != nil {
		return err
	}

	switch owner := id.(type) {
	case User:
		orderID, err := bson.ObjectIDFromHex(itemID)
		if err != nil {
			return ErrItemNotFound
		}
		err = s.orders.DeletePendingLine(ctx, owner.ID, orderID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrItemNotFound
		}
		return err

	case Guest:
		productID, err := s.guestLine(ctx, owner.SessionID, itemID)
		if err != nil {
			return err
		}
		return s.guest.Remove(ctx, owner.SessionID, productID)
	}
	return nil
}

// Checkout transitions every line in the resolved cart to paid as one atomic
// batch and returns the confirmation order id. A user cart flips its pending
// lines in place; a pure-guest cart materializes directly as paid orders and
// is drained.
func (s *Service) Checkout(ctx context.Context, id Identity, staleSession string) (string, error) {
	if err := s.reconcile(ctx, id, staleSession); err != nil {
		return "", err
	}

	switch owner := id.(type) {
	case User:
		first, count, err := s.orders.MarkAllPendingPaid(ctx, owner.ID)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return "", ErrEmptyCart
		}
		return first.Hex(), nil

	case Guest:
		lines, err := s.guest.Lines(ctx, owner.SessionID)
		if err != nil {
			return "", err
		}
		priced := make([]models.PricedLine, 0, len(lines))
		for _, g := range lines {
			product, err := s.catalog.ProductByID(ctx, g.ProductID)
			if errors.Is(err, mongo.ErrNoDocuments) {
				continue
			}
			if err != nil {
				return "", err
			}
			priced = append(priced, models.PricedLine{
				ProductID: g.ProductID,
				Quantity:  g.Quantity,
				UnitPrice: product.Price,
			})
		}
		if len(priced) == 0 {
			return "", ErrEmptyCart
		}
		first, err := s.orders.InsertPaidOrders(ctx, priced)
		if err != nil {
			return "", err
		}
		if err := s.guest.Clear(ctx, owner.SessionID); err != nil {
			return "", err
		}
		return first.Hex(), nil
	}
	return "", ErrEmptyCart
}

func (s *Service) count(ctx context.Context, id Identity) (int, error) {
	total := 0
	switch owner := id.(type) {
	case User:
		orders, err := s.orders.PendingByUser(ctx, owner.ID)
		if err != nil {
			return 0, err
		}
		for _, o := range orders {
			total += o.Quantity
		}
	case Guest:
		lines, err := s.guest.Lines(ctx, owner.SessionID)
		if err != nil {
			return 0, err
		}
		for _, g := range lines {
			total += g.Quantity
		}
	}
	return total, nil
}

func (s *Service) pendingLine(ctx context.Context, userID, orderID bson.ObjectID) (*models.Order, error) {
	orders, err := s.orders.PendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, ErrItemNotFound
}

func (s *Service) guestLine(ctx context.Context, sessionID, itemID string) (bson.ObjectID, error) {
	productID, err := bson.ObjectIDFromHex(itemID)
	if err != nil {
		return bson.ObjectID{}, ErrItemNotFound
	}
	lines, err := s.guest.Lines(ctx, sessionID)
	if err != nil {
		return bson.ObjectID{}, err
	}
	for _, g := range lines {
		if g.ProductID == productID {
			return productID, nil
		}
	}
	return bson.ObjectID{}, ErrItemNotFound
}
