package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nerakcos/storefront-api/pkg/cart"
	"github.com/nerakcos/storefront-api/pkg/global"
	"github.com/nerakcos/storefront-api/pkg/models"
	"github.com/nerakcos/storefront-api/pkg/redis"
)

const guestCookieName = "guest_session"

// guestCookie reads the guest session cookie, empty when absent.
func guestCookie(c *gin.Context) string {
	value, err := c.Cookie(guestCookieName)
	if err != nil {
		return ""
	}
	return value
}

// setGuestCookie pins a freshly minted guest session to the browser.
// SameSite=None with Secure so the storefront frontend can send it
// cross-origin.
func setGuestCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(guestCookieName, sessionID, int(redis.SessionTTL.Seconds()), "/", "", true, true)
}

func clearGuestCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(guestCookieName, "", -1, "/", "", true, true)
}

// respondCartError maps cart service errors onto the wire contract.
func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found"))
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Item not found in cart"))
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Valid quantity required"))
	case errors.Is(err, cart.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Not enough stock available"))
	case errors.Is(err, cart.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Cart is empty"))
	default:
		log.Printf("Cart operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
	}
}

func AddToCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("product_id is required"))
			return
		}
		productID, err := bson.ObjectIDFromHex(req.ProductID)
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found"))
			return
		}
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}

		identity, stale, minted := cart.ResolveIdentity(currentUserID(c), guestCookie(c))

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		count, err := carts.Add(ctx, identity, stale, productID, quantity)
		if err != nil {
			respondCartError(c, err)
			return
		}

		if minted {
			if guest, ok := identity.(cart.Guest); ok {
				setGuestCookie(c, guest.SessionID)
			}
		}
		c.JSON(http.StatusOK, global.MessageResponse("Added to cart", gin.H{"cart_count": count}))
	}
}

func GetCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, stale, _ := cart.ResolveIdentity(currentUserID(c), guestCookie(c))

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		lines, err := carts.Lines(ctx, identity, stale)
		if err != nil {
			respondCartError(c, err)
			return
		}
		if lines == nil {
			lines = []models.CartLineView{}
		}
		c.JSON(http.StatusOK, lines)
	}
}

func UpdateCartItem(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body"))
			return
		}

		identity, stale, _ := cart.ResolveIdentity(currentUserID(c), guestCookie(c))

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := carts.UpdateQuantity(ctx, identity, stale, c.Param("item_id"), req.Quantity); err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, global.MessageResponse("Cart updated", nil))
	}
}

func RemoveFromCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, stale, _ := cart.ResolveIdentity(currentUserID(c), guestCookie(c))

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := carts.Remove(ctx, identity, stale, c.Param("item_id")); err != nil {
			respondCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, global.MessageResponse("Item removed from cart", nil))
	}
}

func Checkout(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Shipping details are accepted but not yet acted on; payment
		// capture happens out of band.
		var req models.CheckoutRequest
		_ = c.ShouldBindJSON(&req)

		hadCookie := guestCookie(c) != ""
		identity, stale, _ := cart.ResolveIdentity(currentUserID(c), guestCookie(c))

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		orderID, err := carts.Checkout(ctx, identity, stale)
		if err != nil {
			respondCartError(c, err)
			return
		}

		if hadCookie {
			clearGuestCookie(c)
		}
		c.JSON(http.StatusOK, global.MessageResponse("Order placed successfully", gin.H{"order_id": orderID}))
	}
}
