// cart.go

package main

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var errUserNotFound = errors.New("user not found")

// currentUser loads the document of the authenticated caller, identified by
// the email the auth gate put into the request context.
func (s *server) currentUser(ctx context.Context, c *gin.Context) (User, error) {
	var user User
	err := s.users().FindOne(ctx, bson.M{"email": c.GetString("email")}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, errUserNotFound
	}
	return user, err
}

// resolvedCartLine is a cart entry with its product reference expanded.
type resolvedCartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// applyCartChange returns the cart after adding productID. A nil quantity
// means "one more of it": increment when the line exists, insert quantity 1
// when it does not. A non-nil quantity is set as the absolute value. Lines
// at zero or below are dropped.
func applyCartChange(cart []CartLine, productID primitive.ObjectID, quantity *int) []CartLine {
	found := false
	for i := range cart {
		if cart[i].ProductID == productID {
			if quantity != nil {
				cart[i].Quantity = *quantity
			} else {
				cart[i].Quantity++
			}
			found = true
			break
		}
	}
	if !found {
		qty := 1
		if quantity != nil {
			qty = *quantity
		}
		cart = append(cart, CartLine{ProductID: productID, Quantity: qty})
	}

	kept := cart[:0]
	for _, line := range cart {
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	return kept
}

// resolveCart expands product references. Lines whose product has since been
// deleted are silently dropped from the view.
func (s *server) resolveCart(ctx context.Context, cart []CartLine) ([]resolvedCartLine, error) {
	resolved := []resolvedCartLine{}
	if len(cart) == 0 {
		return resolved, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, line := range cart {
		ids = append(ids, line.ProductID)
	}
	cur, err := s.products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, line := range cart {
		if p, ok := byID[line.ProductID]; ok {
			resolved = append(resolved, resolvedCartLine{Product: p, Quantity: line.Quantity})
		}
	}
	return resolved, nil
}

func (s *server) getCart(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := s.currentUser(ctx, c)
	if err != nil {
		s.cartUserError(c, "getCart", err)
		return
	}
	resolved, err := s.resolveCart(ctx, user.Cart)
	if err != nil {
		log.Println("getCart:", err)
		c.JSON(500, gin.H{"message": "could not resolve cart"})
		return
	}
	c.JSON(200, resolved)
}

func (s *server) addToCart(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
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
		s.cartUserError(c, "addToCart", err)
		return
	}

	cart := applyCartChange(user.Cart, productID, req.Quantity)
	_, err = s.users().UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"cart": cart}})
	if err != nil {
		log.Println("addToCart:", err)
		c.JSON(500, gin.H{"message": "could not update cart"})
		return
	}

	resolved, err := s.resolveCart(ctx, cart)
	if err != nil {
		log.Println("addToCart:", err)
		c.JSON(500, gin.H{"message": "could not resolve cart"})
		return
	}
	c.JSON(200, resolved)
}

func (s *server) removeCartItem(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(400, gin.H{"message": "invalid product id"})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := s.currentUser(ctx, c)
	if err != nil {
		s.cartUserError(c, "removeCartItem", err)
		return
	}

	// $pull is atomic on the user document, no read-modify-write needed
	_, err = s.users().UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$pull": bson.M{"cart": bson.M{"productId": productID}}})
	if err != nil {
		log.Println("removeCartItem:", err)
		c.JSON(500, gin.H{"message": "could not update cart"})
		return
	}

	cart := user.Cart[:0]
	for _, line := range user.Cart {
		if line.ProductID != productID {
			cart = append(cart, line)
		}
	}
	resolved, err := s.resolveCart(ctx, cart)
	if err != nil {
		log.Println("removeCartItem:", err)
		c.JSON(500, gin.H{"message": "could not resolve cart"})
		return
	}
	c.JSON(200, resolved)
}

func (s *server) cartUserError(c *gin.Context, op string, err error) {
	if errors.Is(err, errUserNotFound) {
		c.JSON(404, gin.H{"message": "user not found"})
		return
	}
	log.Println(op+":", err)
	c.JSON(500, gin.H{"message": "could not look up user"})
}
