// models.go

package main

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

var orderStatuses = map[string]bool{
	"pending":    true,
	"processing": true,
	"shipped":    true,
	"delivered":  true,
	"cancelled":  true,
}

func validRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

func validOrderStatus(status string) bool {
	return orderStatuses[status]
}

// CartLine is one entry in a user's embedded cart. Quantity is always >= 1
// in persisted documents; zero or negative lines are filtered out on write.
type CartLine struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UID       string               `bson:"uid,omitempty" json:"uid,omitempty"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Phone     string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Image     string               `bson:"image,omitempty" json:"image,omitempty"`
	Role      string               `bson:"role" json:"role"`
	Cart      []CartLine           `bson:"cart" json:"cart"`
	Wishlist  []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

type Category struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name"`
	Slug      string              `bson:"slug" json:"slug"`
	Image     string              `bson:"image,omitempty" json:"image,omitempty"`
	IsNav     bool                `bson:"isNav" json:"isNav"`
	ParentID  *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// Pricing keeps the discount as a pointer: absent means "no deal", which is
// distinct from a discount of zero.
type Pricing struct {
	Regular  float64  `bson:"regular" json:"regular"`
	Discount *float64 `bson:"discount,omitempty" json:"discount,omitempty"`
}

// OnDeal reports whether the discount is set and strictly below the regular
// price.
func (p Pricing) OnDeal() bool {
	return p.Discount != nil && *p.Discount < p.Regular
}

// Effective is the unit price an order line is frozen at: the discount when
// it is a real deal, the regular price otherwise.
func (p Pricing) Effective() float64 {
	if p.OnDeal() {
		return *p.Discount
	}
	return p.Regular
}

type ProductDetails struct {
	Description   string `bson:"description,omitempty" json:"description,omitempty"`
	Specification string `bson:"specification,omitempty" json:"specification,omitempty"`
	Warranty      string `bson:"warranty,omitempty" json:"warranty,omitempty"`
}

type SEO struct {
	MetaTitle       string `bson:"metaTitle,omitempty" json:"metaTitle,omitempty"`
	MetaDescription string `bson:"metaDescription,omitempty" json:"metaDescription,omitempty"`
}

type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Slug      string             `bson:"slug" json:"slug"`
	Brand     string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Category  primitive.ObjectID `bson:"category" json:"category"`
	Pricing   Pricing            `bson:"pricing" json:"pricing"`
	Stock     int                `bson:"stock" json:"stock"`
	Status    bool               `bson:"status" json:"status"`
	Images    []string           `bson:"images" json:"images"`
	Details   ProductDetails     `bson:"details,omitempty" json:"details"`
	SEO       SEO                `bson:"seo,omitempty" json:"seo"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type ShippingAddress struct {
	FullName   string `bson:"fullName" json:"fullName"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// OrderItem freezes the unit price at placement time; later product price
// changes never alter an existing order.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user" json:"user"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus     string             `bson:"orderStatus" json:"orderStatus"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
