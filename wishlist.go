// wishlist.go

package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *server) getWishlist(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := s.currentUser(ctx, c)
	if err != nil {
		s.cartUserError(c, "getWishlist", err)
		return
	}
	products, err := s.findProductsByIDs(ctx, user.Wishlist)
	if err != nil {
		log.Println("getWishlist:", err)
		c.JSON(500, gin.H{"message": "could not resolve wishlist"})
		return
	}
	c.JSON(200, products)
}

func (s *server) addToWishlist(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"message": "invalid request body"})
		return
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid product id"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := s.currentUser(ctx, c)
	if err != nil {
		s.cartUserError(c, "addToWishlist", err)
		return
	}

	// $addToSet keeps the wishlist duplicate-free without a read first
	_, err = s.users().UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$addToSet": bson.M{"wishlist": productID}})
	if err != nil {
		log.Println("addToWishlist:", err)
		c.JSON(500, gin.H{"message": "could not update wishlist"})
		return
	}

	wishlist := user.Wishlist
	present := false
	for _, id := range wishlist {
		if id == productID {
			present = true
			break
		}
	}
	if !present {
		wishlist = append(wishlist, productID)
	}
	products, err := s.findProductsByIDs(ctx, wishlist)
	if err != nil {
		log.Println("addToWishlist:", err)
		c.JSON(500, gin.H{"message": "could not resolve wishlist"})
		return
	}
	c.JSON(200, products)
}
