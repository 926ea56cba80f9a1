package router

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nerakcos/storefront-api/pkg/email"
	"github.com/nerakcos/storefront-api/pkg/global"
	"github.com/nerakcos/storefront-api/pkg/models"
	"github.com/nerakcos/storefront-api/pkg/mongo"
)

func Welcome() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, global.MessageResponse("Storefront API is running", nil))
	}
}

func HealthCheck(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// productView decorates a product with its category slug and name so the
// frontend can render listings without a second request.
type productView struct {
	models.Product
	Category     string `json:"category,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

func decorateProducts(products []models.Product, categories []models.Category) []productView {
	byID := make(map[bson.ObjectID]models.Category, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}

	views := make([]productView, 0, len(products))
	for _, product := range products {
		view := productView{Product: product}
		if category, ok := byID[product.CategoryID]; ok {
			view.Category = category.Slug
			view.CategoryName = category.Name
		}
		views = append(views, view)
	}
	return views
}

func GetProducts(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		products, err := store.ListProducts(ctx)
		if err != nil {
			log.Printf("Failed to list products: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}
		categories, err := store.ListCategories(ctx)
		if err != nil {
			log.Printf("Failed to list categories: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, decorateProducts(products, categories))
	}
}

func GetProduct(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found"))
			return
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		product, err := store.ProductByID(ctx, id)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found"))
				return
			}
			log.Printf("Failed to load product: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		view := productView{Product: *product}
		if category, err := store.CategoryByID(ctx, product.CategoryID); err == nil {
			view.Category = category.Slug
			view.CategoryName = category.Name
		}
		c.JSON(http.StatusOK, view)
	}
}

func CreateProduct(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Missing required fields (name, price, category_id)"))
			return
		}
		categoryID, err := bson.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category"))
			return
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if _, err := store.CategoryByID(ctx, categoryID); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category"))
				return
			}
			log.Printf("Failed to load category: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		product := &models.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
			ImageURLs:   req.ImageURLs,
			CategoryID:  categoryID,
		}
		if err := store.CreateProduct(ctx, product); err != nil {
			log.Printf("Failed to create product: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusCreated, global.MessageResponse("Product created!", gin.H{"id": product.ID.Hex()}))
	}
}

func UpdateProduct(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found"))
			return
		}
		var req models.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body"))
			return
		}

		updates := bson.D{}
		if req.Name != nil {
			updates = append(updates, bson.E{Key: "name", Value: *req.Name})
		}
		if req.Description != nil {
			updates = append(updates, bson.E{Key: "description", Value: *req.Description})
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Price must be greater than zero"))
				return
			}
			updates = append(updates, bson.E{Key: "price", Value: *req.Price})
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Stock cannot be negative"))
				return
			}
			updates = append(updates, bson.E{Key: "stock", Value: *req.Stock})
		}
		if req.ImageURLs != nil {
			updates = append(updates, bson.E{Key: "image_urls", Value: req.ImageURLs})
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if req.CategoryID != nil {
			categoryID, err := bson.ObjectIDFromHex(*req.CategoryID)
			if err != nil {
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category"))
				return
			}
			if _, err := store.CategoryByID(ctx, categoryID); err != nil {
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category"))
				return
			}
			updates = append(updates, bson.E{Key: "category_id", Value: categoryID})
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("No fields to update"))
			return
		}

		product, err := store.UpdateProduct(ctx, id, updates)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found"))
				return
			}
			log.Printf("Failed to update product: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found"))
			return
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.DeleteProduct(ctx, id); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found"))
				return
			}
			log.Printf("Failed to delete product: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, global.MessageResponse("Product deleted", nil))
	}
}

func GetCategories(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		categories, err := store.ListCategories(ctx)
		if err != nil {
			log.Printf("Failed to list categories: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func CreateCategory(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Category name is required"))
			return
		}

		slug := req.Slug
		if slug == "" {
			slug = models.Slugify(req.Name)
		}
		category := &models.Category{
			Name:        req.Name,
			Slug:        slug,
			Description: req.Description,
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.CreateCategory(ctx, category); err != nil {
			if errors.Is(err, mongo.ErrDuplicateSlug) {
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Category already exists"))
				return
			}
			log.Printf("Failed to create category: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusCreated, global.MessageResponse("Category created!", gin.H{"id": category.ID.Hex()}))
	}
}

// CreateOrder is the direct-order path: it skips the cart, decrements stock
// and leaves a pending order for the named user.
func CreateOrder(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Missing required fields (user_id, product_id, quantity)"))
			return
		}
		userID, err := bson.ObjectIDFromHex(req.UserID)
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("User or product not found"))
			return
		}
		productID, err := bson.ObjectIDFromHex(req.ProductID)
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("User or product not found"))
			return
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if _, err := store.UserByID(ctx, userID); err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("User or product not found"))
			return
		}
		product, err := store.ProductByID(ctx, productID)
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("User or product not found"))
			return
		}

		order, err := store.PlaceDirectOrder(ctx, userID, productID, req.Quantity, product.Price)
		if err != nil {
			if errors.Is(err, mongo.ErrInsufficientStock) {
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Not enough stock available"))
				return
			}
			log.Printf("Failed to place order: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusCreated, global.MessageResponse("Order placed successfully!", gin.H{
			"id":    order.ID.Hex(),
			"total": order.TotalPrice,
		}))
	}
}

func GetOrders(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		orders, err := store.ListOrders(ctx)
		if err != nil {
			log.Printf("Failed to list orders: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func Contact(store *mongo.Store, notifier *email.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Missing required fields (name, email, message)"))
			return
		}

		msg := &models.ContactMessage{
			Name:    req.Name,
			Email:   req.Email,
			Subject: req.Subject,
			Message: req.Message,
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.CreateContactMessage(ctx, msg); err != nil {
			log.Printf("Failed to store contact message: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		go notifier.NotifyContact("contact message", req.Name, req.Email, req.Message)

		c.JSON(http.StatusCreated, global.MessageResponse("Submission received, thank you!", gin.H{"id": msg.ID.Hex()}))
	}
}

func Collaborate(store *mongo.Store, notifier *email.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CollaborateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Missing required fields (name, email, message)"))
			return
		}

		collab := &models.CollaborationRequest{
			Name:    req.Name,
			Email:   req.Email,
			Message: req.Message,
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.CreateCollaborationRequest(ctx, collab); err != nil {
			log.Printf("Failed to store collaboration request: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		go notifier.NotifyContact("collaboration request", req.Name, req.Email, req.Message)

		c.JSON(http.StatusCreated, global.MessageResponse("Collaboration request received, we will be in touch!", gin.H{"id": collab.ID.Hex()}))
	}
}

func GetBlogPosts(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		posts, err := store.ListBlogPosts(ctx)
		if err != nil {
			log.Printf("Failed to list blog posts: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}
		c.JSON(http.StatusOK, posts)
	}
}

// parsePostDate accepts RFC 3339 or a bare date, falling back to now.
func parsePostDate(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed
	}
	return time.Now()
}

func CreateBlogPost(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateBlogPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Missing required fields (title, content)"))
			return
		}

		post := &models.BlogPost{
			Title:     req.Title,
			Thumbnail: req.Thumbnail,
			Content:   req.Content,
			Date:      parsePostDate(req.Date),
			IsRead:    req.IsRead,
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.CreateBlogPost(ctx, post); err != nil {
			log.Printf("Failed to create blog post: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusCreated, global.MessageResponse("Blog post created!", gin.H{"id": post.ID.Hex()}))
	}
}

func UpdateBlogPost(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Blog post not found"))
			return
		}
		var req models.UpdateBlogPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body"))
			return
		}

		updates := bson.D{}
		if req.Title != nil {
			updates = append(updates, bson.E{Key: "title", Value: *req.Title})
		}
		if req.Thumbnail != nil {
			updates = append(updates, bson.E{Key: "thumbnail", Value: *req.Thumbnail})
		}
		if req.Content != nil {
			updates = append(updates, bson.E{Key: "content", Value: *req.Content})
		}
		if req.Date != nil {
			updates = append(updates, bson.E{Key: "date", Value: parsePostDate(*req.Date)})
		}
		if req.IsRead != nil {
			updates = append(updates, bson.E{Key: "is_read", Value: *req.IsRead})
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("No fields to update"))
			return
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		post, err := store.UpdateBlogPost(ctx, id, updates)
		if err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, global.ErrorResponse("Blog post not found"))
				return
			}
			log.Printf("Failed to update blog post: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, post)
	}
}

func DeleteBlogPost(store *mongo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Blog post not found"))
			return
		}

		ctx, cancel := global.GetDefaultTimer()
		defer cancel()

		if err := store.DeleteBlogPost(ctx, id); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, global.ErrorResponse("Blog post not found"))
				return
			}
			log.Printf("Failed to delete blog post: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Something went wrong, please try again"))
			return
		}

		c.JSON(http.StatusOK, global.MessageResponse("Blog post deleted", nil))
	}
}

// allowed upload extensions, matching what the frontend sends.
var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadImages stores multipart images under the upload directory and returns
// their public URLs. Saves are all-or-nothing: on a mid-batch failure, files
// written so far are removed best-effort.
func UploadImages(uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("No images provided"))
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("No images provided"))
			return
		}

		var saved []string
		var urls []string
		for _, file := range files {
			ext := strings.ToLower(filepath.Ext(file.Filename))
			if !allowedImageExt[ext] {
				cleanupUploads(saved)
				c.JSON(http.StatusBadRequest, global.ErrorResponse("Unsupported image type"))
				return
			}

			name := fmt.Sprintf("%s%s", uuid.NewString(), ext)
			dst := filepath.Join(uploadDir, name)
			if err := c.SaveUploadedFile(file, dst); err != nil {
				log.Printf("Failed to save upload %s: %v", file.Filename, err)
				cleanupUploads(saved)
				c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to save images"))
				return
			}
			saved = append(saved, dst)
			urls = append(urls, "/static/uploads/"+name)
		}

		c.JSON(http.StatusOK, gin.H{"urls": urls})
	}
}

func cleanupUploads(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			log.Printf("Warning: failed to remove orphaned upload %s: %v", path, err)
		}
	}
}
