// users.go

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

func (s *server) listUsers(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cur, err := s.users().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		log.Println("listUsers:", err)
		c.JSON(500, gin.H{"message": "could not fetch users"})
		return
	}
	users := []User{}
	if err := cur.All(ctx, &users); err != nil {
		log.Println("listUsers:", err)
		c.JSON(500, gin.H{"message": "could not fetch users"})
		return
	}
	c.JSON(200, users)
}

// upsertUser is the sign-in hook: called with the identity provider's
// profile, it returns the stored user when the email is known and creates
// one otherwise. No duplicate is ever created for an email.
func (s *server) upsertUser(c *gin.Context) {
	var req struct {
		UID   string `json:"uid"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "invalid request body"})
		return
	}
	if req.Email == "" {
		c.JSON(400, gin.H{"message": "email is required"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var existing User
	err := s.users().FindOne(ctx, bson.M{"email": req.Email}).Decode(&existing)
	if err == nil {
		c.JSON(200, existing)
		return
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		log.Println("upsertUser:", err)
		c.JSON(500, gin.H{"message": "could not look up user"})
		return
	}

	user := User{
		ID:        primitive.NewObjectID(),
		UID:       req.UID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Image:     req.Image,
		Role:      RoleUser,
		Cart:      []CartLine{},
		Wishlist:  []primitive.ObjectID{},
		CreatedAt: time.Now(),
	}
	if _, err := s.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(409, gin.H{"message": "email already registered"})
			return
		}
		log.Println("upsertUser:", err)
		c.JSON(500, gin.H{"message": "could not create user"})
		return
	}
	c.JSON(201, user)
}

// checkAdmin only answers for the caller's own email.
func (s *server) checkAdmin(c *gin.Context) {
	email := c.Param("email")
	if email != c.GetString("email") {
		c.JSON(403, gin.H{"message": "forbidden"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var user User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(404, gin.H{"message": "user not found"})
		return
	}
	if err != nil {
		log.Println("checkAdmin:", err)
		c.JSON(500, gin.H{"message": "could not look up user"})
		return
	}
	c.JSON(200, gin.H{"admin": user.Role == RoleAdmin})
}

func (s *server) updateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !validRole(req.Role) {
		c.JSON(400, gin.H{"message": "role must be one of: user, admin"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid user id"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := s.users().UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": req.Role}})
	if err != nil {
		log.Println("updateUserRole:", err)
		c.JSON(500, gin.H{"message": "could not update role"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(404, gin.H{"message": "user not found"})
		return
	}
	c.JSON(200, gin.H{"id": id.Hex(), "role": req.Role})
}
