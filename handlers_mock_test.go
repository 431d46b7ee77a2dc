// handlers_mock_test.go
//
// Handler tests against the driver's mocked deployment: the router runs for
// real, only the wire responses from MongoDB are canned.

package main

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func mockServer(mt *mtest.T) *server {
	return &server{db: mt.DB, jwtSecret: testSecret, dealsLimit: defaultDealsLimit}
}

func userDoc(id primitive.ObjectID, email, role string, cart bson.A) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Ada Shopper"},
		{Key: "email", Value: email},
		{Key: "role", Value: role},
		{Key: "cart", Value: cart},
		{Key: "wishlist", Value: bson.A{}},
	}
}

func productDoc(id primitive.ObjectID, name string, regular float64, discount *float64) bson.D {
	pricing := bson.D{{Key: "regular", Value: regular}}
	if discount != nil {
		pricing = append(pricing, bson.E{Key: "discount", Value: *discount})
	}
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "slug", Value: generateSlug(name)},
		{Key: "category", Value: primitive.NewObjectID()},
		{Key: "pricing", Value: pricing},
		{Key: "stock", Value: 5},
		{Key: "status", Value: true},
	}
}

func TestUpsertUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing email returns stored user", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc(id, "ada@example.com", "user", bson.A{})))

		r := newRouter(mockServer(mt), nil)
		w := doRequest(r, http.MethodPost, "/api/users", "",
			[]byte(`{"email":"ada@example.com","name":"Ada Shopper"}`))
		require.Equal(t, 200, w.Code)

		var got User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "ada@example.com", got.Email)
	})

	mt.Run("unknown email creates user", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		r := newRouter(mockServer(mt), nil)
		w := doRequest(r, http.MethodPost, "/api/users", "",
			[]byte(`{"email":"new@example.com","name":"New Shopper"}`))
		require.Equal(t, 201, w.Code)

		var got User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, RoleUser, got.Role)
		assert.Empty(t, got.Cart)
	})

	mt.Run("missing email is rejected", func(mt *mtest.T) {
		r := newRouter(mockServer(mt), nil)
		w := doRequest(r, http.MethodPost, "/api/users", "", []byte(`{"name":"Nobody"}`))
		assert.Equal(t, 400, w.Code)
	})
}

func TestGetProductBySlug(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		ns := mt.DB.Name() + ".products"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			productDoc(id, "Wireless Mouse", 100, floatPtr(80))))

		r := newRouter(mockServer(mt), nil)
		w := doRequest(r, http.MethodGet, "/api/products/wireless-mouse-1700000000000", "", nil)
		require.Equal(t, 200, w.Code)

		var got Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, id, got.ID)
		assert.True(t, got.Pricing.OnDeal())
	})

	mt.Run("not found", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".products"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		r := newRouter(mockServer(mt), nil)
		w := doRequest(r, http.MethodGet, "/api/products/no-such-slug", "", nil)
		assert.Equal(t, 404, w.Code)
	})
}

func TestCreateCategoryConflict(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate name maps to 409", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		r := newRouter(mockServer(mt), nil)
		token := signToken(t, "admin@example.com", time.Hour)
		w := doRequest(r, http.MethodPost, "/api/categories", token,
			[]byte(`{"name":"Electronics"}`))
		assert.Equal(t, 409, w.Code)
	})
}

func TestDeleteCategoryOrphansChildren(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("delete clears children's parentId", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 2},
				bson.E{Key: "nModified", Value: 2},
			),
		)

		r := newRouter(mockServer(mt), nil)
		token := signToken(t, "admin@example.com", time.Hour)
		w := doRequest(r, http.MethodDelete,
			"/api/categories/"+primitive.NewObjectID().Hex(), token, nil)
		assert.Equal(t, 200, w.Code)
	})

	mt.Run("unknown id is 404", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		r := newRouter(mockServer(mt), nil)
		token := signToken(t, "admin@example.com", time.Hour)
		w := doRequest(r, http.MethodDelete,
			"/api/categories/"+primitive.NewObjectID().Hex(), token, nil)
		assert.Equal(t, 404, w.Code)
	})
}

func TestUpdateUserRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("valid role on existing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		r := newRouter(mockServer(mt), nil)
		token := signToken(t, "admin@example.com", time.Hour)
		w := doRequest(r, http.MethodPatch,
			"/api/users/"+primitive.NewObjectID().Hex()+"/role", token,
			[]byte(`{"role":"admin"}`))
		require.Equal(t, 200, w.Code)

		var got struct {
			Role string `json:"role"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "admin", got.Role)
	})

	mt.Run("unknown id is 404", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		r := newRouter(mockServer(mt), nil)
		token := signToken(t, "admin@example.com", time.Hour)
		w := doRequest(r, http.MethodPatch,
			"/api/users/"+primitive.NewObjectID().Hex()+"/role", token,
			[]byte(`{"role":"admin"}`))
		assert.Equal(t, 404, w.Code)
	})
}

func TestPlaceOrder(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	address := `{"shippingAddress":{"fullName":"Ada Shopper","address":"1 Market St",` +
		`"city":"Springfield","postalCode":"12345","country":"US"}}`

	mt.Run("snapshots prices and totals the cart", func(mt *mtest.T) {
		userID := primitive.NewObjectID()
		prodA := primitive.NewObjectID()
		prodB := primitive.NewObjectID()

		cart := bson.A{
			bson.D{{Key: "productId", Value: prodA}, {Key: "quantity", Value: 2}},
			bson.D{{Key: "productId", Value: prodB}, {Key: "quantity", Value: 1}},
		}
		usersNS := mt.DB.Name() + ".users"
		productsNS := mt.DB.Name() + ".products"
		mt.AddMockResponses(
			// caller's user document
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
				userDoc(userID, "ada@example.com", "user", cart)),
			// cart resolution
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
				productDoc(prodA, "Deal Mouse", 60, floatPtr(50)),
				productDoc(prodB, "Plain Pad", 30, nil)),
			// order insert
			mtest.CreateSuccessResponse(),
			// cart clear
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 1},
			),
		)

		r := newRouter(mockServer(mt), nil)
		token := signToken(t, "ada@example.com", time.Hour)
		w := doRequest(r, http.MethodPost, "/api/orders", token, []byte(address))
		require.Equal(t, 201, w.Code)

		var got Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 130.0, got.TotalAmount)
		assert.Equal(t, PaymentPending, got.PaymentStatus)
		assert.Equal(t, "pending", got.OrderStatus)
		require.Len(t, got.Items, 2)
		assert.Equal(t, 50.0, got.Items[0].Price)
		assert.Equal(t, 30.0, got.Items[1].Price)
	})

	mt.Run("empty cart is rejected", func(mt *mtest.T) {
		usersNS := mt.DB.Name() + ".users"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "ada@example.com", "user", bson.A{})))

		r := newRouter(mockServer(mt), nil)
		token := signToken(t, "ada@example.com", time.Hour)
		w := doRequest(r, http.MethodPost, "/api/orders", token, []byte(address))
		assert.Equal(t, 400, w.Code)
	})
}
