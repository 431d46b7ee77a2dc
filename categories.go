// categories.go

package main

import (
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// categoryView is a category with its parent's name resolved.
type categoryView struct {
	Category
	ParentName string `json:"parentName,omitempty"`
}

func (s *server) listCategories(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cur, err := s.categories().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Println("listCategories:", err)
		c.JSON(500, gin.H{"message": "could not fetch categories"})
		return
	}
	var categories []Category
	if err := cur.All(ctx, &categories); err != nil {
		log.Println("listCategories:", err)
		c.JSON(500, gin.H{"message": "could not fetch categories"})
		return
	}

	names := make(map[primitive.ObjectID]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	views := make([]categoryView, 0, len(categories))
	for _, cat := range categories {
		v := categoryView{Category: cat}
		if cat.ParentID != nil {
			v.ParentName = names[*cat.ParentID]
		}
		views = append(views, v)
	}
	c.JSON(200, views)
}

func (s *server) createCategory(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Image    string `json:"image"`
		IsNav    bool   `json:"isNav"`
		ParentID string `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(400, gin.H{"message": "name is required"})
		return
	}

	category := Category{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Slug:      generateSlug(req.Name),
		Image:     req.Image,
		IsNav:     req.IsNav,
		CreatedAt: time.Now(),
	}
	if req.ParentID != "" {
		parentID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			c.JSON(400, gin.H{"message": "invalid parent id"})
			return
		}
		category.ParentID = &parentID
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := s.categories().InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(409, gin.H{"message": "category name or slug already exists"})
			return
		}
		log.Println("createCategory:", err)
		c.JSON(500, gin.H{"message": "could not create category"})
		return
	}
	c.JSON(201, category)
}

func (s *server) updateCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid category id"})
		return
	}
	var req struct {
		Name     *string `json:"name"`
		Image    *string `json:"image"`
		IsNav    *bool   `json:"isNav"`
		ParentID *string `json:"parentId"`
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
	if req.Image != nil {
		update["image"] = *req.Image
	}
	if req.IsNav != nil {
		update["isNav"] = *req.IsNav
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			update["parentId"] = nil
		} else {
			parentID, err := primitive.ObjectIDFromHex(*req.ParentID)
			if err != nil {
				c.JSON(400, gin.H{"message": "invalid parent id"})
				return
			}
			update["parentId"] = parentID
		}
	}
	if len(update) == 0 {
		c.JSON(400, gin.H{"message": "nothing to update"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := s.categories().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(409, gin.H{"message": "category name or slug already exists"})
			return
		}
		log.Println("updateCategory:", err)
		c.JSON(500, gin.H{"message": "could not update category"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(404, gin.H{"message": "category not found"})
		return
	}

	var updated Category
	if err := s.categories().FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
		log.Println("updateCategory:", err)
		c.JSON(500, gin.H{"message": "could not fetch updated category"})
		return
	}
	c.JSON(200, updated)
}

func (s *server) toggleNavStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid category id"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var category Category
	err = s.categories().FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(404, gin.H{"message": "category not found"})
		return
	}
	if err != nil {
		log.Println("toggleNavStatus:", err)
		c.JSON(500, gin.H{"message": "could not fetch category"})
		return
	}

	category.IsNav = !category.IsNav
	_, err = s.categories().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"isNav": category.IsNav}})
	if err != nil {
		log.Println("toggleNavStatus:", err)
		c.JSON(500, gin.H{"message": "could not update category"})
		return
	}
	c.JSON(200, category)
}

// deleteCategory removes the category and orphans its children: their
// parentId is cleared, the children themselves are never deleted.
func (s *server) deleteCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid category id"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := s.categories().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Println("deleteCategory:", err)
		c.JSON(500, gin.H{"message": "could not delete category"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(404, gin.H{"message": "category not found"})
		return
	}

	_, err = s.categories().UpdateMany(ctx, bson.M{"parentId": id},
		bson.M{"$unset": bson.M{"parentId": ""}})
	if err != nil {
		log.Println("deleteCategory: orphan update:", err)
		c.JSON(500, gin.H{"message": "category deleted but children not updated"})
		return
	}
	c.JSON(200, gin.H{"message": "category deleted"})
}
