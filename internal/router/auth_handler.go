package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nerakcos/storefront-api/pkg/auth"
	"github.com/nerakcos/storefront-api/pkg/global"
	"github.com/nerakcos/storefront-api/pkg/models"
	"github.com/nerakcos/storefront-api/pkg/mongo"
)

func Register(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Missing required fields (email, password, name)"))
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("Failed to hash password: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		user := &models.User{
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.CreateUser(ctx, user); err != nil {
			if errors.Is(err, mongo.ErrDuplicateEmail) {
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Email already registered"))
				return
			}
			log.Printf("Failed to create user: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusCreated, global.MessageResponse("User registered successfully!", gin.H{"id": user.ID.Hex()}))
	}
}

func Login(store *mongo.Store, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Email and password are required"))
			return
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		user, err := store.UserByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid credentials"))
				return
			}
			log.Printf("Failed to look up user: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid credentials"))
			return
		}

		token, err := tokens.Generate(user.ID, user.Role)
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, global.MessageResponse("Login successful!", gin.H{
			"access_token": token,
			"id":           user.ID.Hex(),
			"name":         user.Name,
			"role":         user.Role,
		}))
	}
}

// ResetPassword acknowledges the request without sending anything yet.
// TODO: deliver a real reset link once transactional email templates exist.
func ResetPassword(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Email is required"))
			return
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if _, err := store.UserByEmail(ctx, req.Email); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, global.ErrorResponse("User not found"))
				return
			}
			log.Printf("Failed to look up user: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, global.MessageResponse("Password reset requested, check your inbox", nil))
	}
}

func GetProfile(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		user, err := store.UserByID(ctx, *userID)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, global.ErrorResponse("User not found"))
				return
			}
			log.Printf("Failed to load profile: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func UpdateProfile(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil || (req.Name == nil && req.Address == nil) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Missing fields to update (name, address)"))
			return
		}

		userID := currentUserID(c)

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.UpdateProfile(ctx, *userID, &req); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, global.ErrorResponse("User not found"))
				return
			}
			log.Printf("Failed to update profile: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, global.MessageResponse("Profile updated", nil))
	}
}
