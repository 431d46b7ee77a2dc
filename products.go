// products.go

package main

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productView is a product with its category's name resolved.
type productView struct {
	Product
	CategoryName string `json:"categoryName,omitempty"`
}

func (s *server) findProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Product, error) {
	products := []Product{}
	if len(ids) == 0 {
		return products, nil
	}
	cur, err := s.products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	err = cur.All(ctx, &products)
	return products, err
}

func (s *server) resolveCategoryNames(ctx context.Context, products []Product) ([]productView, error) {
	ids := make([]primitive.ObjectID, 0, len(products))
	seen := map[primitive.ObjectID]bool{}
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			ids = append(ids, p.Category)
		}
	}

	names := map[primitive.ObjectID]string{}
	if len(ids) > 0 {
		cur, err := s.categories().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		var categories []Category
		if err := cur.All(ctx, &categories); err != nil {
			return nil, err
		}
		for _, cat := range categories {
			names[cat.ID] = cat.Name
		}
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{Product: p, CategoryName: names[p.Category]})
	}
	return views, nil
}

func (s *server) listProducts(c *gin.Context) {
	filter := bson.M{}
	if search := c.Query("search"); search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cur, err := s.products().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Println("listProducts:", err)
		c.JSON(500, gin.H{"message": "could not fetch products"})
		return
	}
	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		log.Println("listProducts:", err)
		c.JSON(500, gin.H{"message": "could not fetch products"})
		return
	}

	views, err := s.resolveCategoryNames(ctx, products)
	if err != nil {
		log.Println("listProducts:", err)
		c.JSON(500, gin.H{"message": "could not resolve categories"})
		return
	}
	c.JSON(200, views)
}

func (s *server) listDeals(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	filter := bson.M{
		"pricing.discount": bson.M{"$ne": nil},
		"$expr":            bson.M{"$lt": bson.A{"$pricing.discount", "$pricing.regular"}},
	}
	cur, err := s.products().Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(s.dealsLimit))
	if err != nil {
		log.Println("listDeals:", err)
		c.JSON(500, gin.H{"message": "could not fetch deals"})
		return
	}
	products := []Product{}
	if err := cur.All(ctx, &products); err != nil {
		log.Println("listDeals:", err)
		c.JSON(500, gin.H{"message": "could not fetch deals"})
		return
	}
	c.JSON(200, products)
}

func (s *server) getProductBySlug(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var product Product
	err := s.products().FindOne(ctx, bson.M{"slug": c.Param("slug")}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(404, gin.H{"message": "product not found"})
		return
	}
	if err != nil {
		log.Println("getProductBySlug:", err)
		c.JSON(500, gin.H{"message": "could not fetch product"})
		return
	}
	c.JSON(200, product)
}

func (s *server) productsByCategory(c *gin.Context) {
	categoryID, err := primitive.ObjectIDFromHex(c.Param("categoryId"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid category id"})
		return
	}

	filter := bson.M{"category": categoryID}
	if exclude := c.Query("exclude"); exclude != "" {
		excludeID, err := primitive.ObjectIDFromHex(exclude)
		if err != nil {
			c.JSON(400, gin.H{"message": "invalid exclude id"})
			return
		}
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	limit := int64(4)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			c.JSON(400, gin.H{"message": "invalid limit"})
			return
		}
		limit = n
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cur, err := s.products().Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		log.Println("productsByCategory:", err)
		c.JSON(500, gin.H{"message": "could not fetch products"})
		return
	}
	products := []Product{}
	if err := cur.All(ctx, &products); err != nil {
		log.Println("productsByCategory:", err)
		c.JSON(500, gin.H{"message": "could not fetch products"})
		return
	}
	c.JSON(200, products)
}

func (s *server) productsByCategorySlug(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var category Category
	err := s.categories().FindOne(ctx, bson.M{"slug": c.Param("slug")}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(404, gin.H{"message": "category not found"})
		return
	}
	if err != nil {
		log.Println("productsByCategorySlug:", err)
		c.JSON(500, gin.H{"message": "could not fetch category"})
		return
	}

	cur, err := s.products().Find(ctx, bson.M{"category": category.ID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Println("productsByCategorySlug:", err)
		c.JSON(500, gin.H{"message": "could not fetch products"})
		return
	}
	products := []Product{}
	if err := cur.All(ctx, &products); err != nil {
		log.Println("productsByCategorySlug:", err)
		c.JSON(500, gin.H{"message": "could not fetch products"})
		return
	}
	c.JSON(200, gin.H{"category": category.Name, "products": products})
}

func (s *server) createProduct(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Brand    string `json:"brand"`
		Category string `json:"category"`
		Pricing  struct {
			Regular  *float64 `json:"regular"`
			Discount *float64 `json:"discount"`
		} `json:"pricing"`
		Stock   *int           `json:"stock"`
		Status  bool           `json:"status"`
		Images  []string       `json:"images"`
		Details ProductDetails `json:"details"`
		SEO     SEO            `json:"seo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(400, gin.H{"message": "name is required"})
		return
	}
	if req.Category == "" {
		c.JSON(400, gin.H{"message": "category is required"})
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid category id"})
		return
	}
	if req.Pricing.Regular == nil {
		c.JSON(400, gin.H{"message": "pricing.regular is required"})
		return
	}
	// stock zero is fine, a missing or negative stock is not
	if req.Stock == nil || *req.Stock < 0 {
		c.JSON(400, gin.H{"message": "stock is required and must be >= 0"})
		return
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}
	product := Product{
		ID:       primitive.NewObjectID(),
		Name:     req.Name,
		Slug:     generateSlug(req.Name),
		Brand:    req.Brand,
		Category: categoryID,
		Pricing: Pricing{
			Regular:  *req.Pricing.Regular,
			Discount: req.Pricing.Discount,
		},
		Stock:     *req.Stock,
		Status:    req.Status,
		Images:    images,
		Details:   req.Details,
		SEO:       req.SEO,
		CreatedAt: time.Now(),
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := s.products().InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(409, gin.H{"message": "product slug already exists"})
			return
		}
		log.Println("createProduct:", err)
		c.JSON(500, gin.H{"message": "could not create product"})
		return
	}
	c.JSON(201, product)
}

func (s *server) updateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid product id"})
		return
	}
	var req struct {
		Name     *string `json:"name"`
		Brand    *string `json:"brand"`
		Category *string `json:"category"`
		Pricing  *struct {
			Regular  *float64 `json:"regular"`
			Discount *float64 `json:"discount"`
		} `json:"pricing"`
		Stock   *int            `json:"stock"`
		Images  []string        `json:"images"`
		Details *ProductDetails `json:"details"`
		SEO     *SEO            `json:"seo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "invalid request body"})
		return
	}

	update := bson.M{}
	if req.Name != nil {
		if *req.Name == "" {
			c.JSON(400, gin.H{"message": "name cannot be empty"})
			return
		}
		update["name"] = *req.Name
		update["slug"] = generateSlug(*req.Name)
	}
	if req.Brand != nil {
		update["brand"] = *req.Brand
	}
	if req.Category != nil {
		categoryID, err := primitive.ObjectIDFromHex(*req.Category)
		if err != nil {
			c.JSON(400, gin.H{"message": "invalid category id"})
			return
		}
		update["category"] = categoryID
	}
	if req.Pricing != nil {
		if req.Pricing.Regular != nil {
			update["pricing.regular"] = *req.Pricing.Regular
		}
		if req.Pricing.Discount != nil {
			update["pricing.discount"] = *req.Pricing.Discount
		}
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			c.JSON(400, gin.H{"message": "stock must be >= 0"})
			return
		}
		update["stock"] = *req.Stock
	}
	if req.Images != nil {
		update["images"] = req.Images
	}
	if req.Details != nil {
		update["details"] = *req.Details
	}
	if req.SEO != nil {
		update["seo"] = *req.SEO
	}
	if len(update) == 0 {
		c.JSON(400, gin.H{"message": "nothing to update"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := s.products().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(409, gin.H{"message": "product slug already exists"})
			return
		}
		log.Println("updateProduct:", err)
		c.JSON(500, gin.H{"message": "could not update product"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(404, gin.H{"message": "product not found"})
		return
	}

	var updated Product
	if err := s.products().FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
		log.Println("updateProduct:", err)
		c.JSON(500, gin.H{"message": "could not fetch updated product"})
		return
	}
	c.JSON(200, updated)
}

func (s *server) updateProductStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid product id"})
		return
	}
	var req struct {
		Status *bool `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == nil {
		c.JSON(400, gin.H{"message": "status must be a boolean"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := s.products().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": *req.Status}})
	if err != nil {
		log.Println("updateProductStatus:", err)
		c.JSON(500, gin.H{"message": "could not update status"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(404, gin.H{"message": "product not found"})
		return
	}
	c.JSON(200, gin.H{"id": id.Hex(), "status": *req.Status})
}

func (s *server) deleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid product id"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := s.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Println("deleteProduct:", err)
		c.JSON(500, gin.H{"message": "could not delete product"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(404, gin.H{"message": "product not found"})
		return
	}
	c.JSON(200, gin.H{"message": "product deleted"})
}
