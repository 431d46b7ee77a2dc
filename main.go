// main.go

package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const requestTimeout = 10 * time.Second

// defaultDealsLimit caps GET /api/products/deals.
const defaultDealsLimit = 10

type config struct {
	port           string
	mongoURL       string
	mongoDB        string
	jwtSecret      string
	allowedOrigins []string
}

func loadConfig() config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config{
		port:     os.Getenv("PORT"),
		mongoURL: os.Getenv("MONGO_URL"),
		mongoDB:  os.Getenv("MONGO_DB"),
	}
	if cfg.port == "" {
		cfg.port = "9000"
	}
	if cfg.mongoDB == "" {
		cfg.mongoDB = "storefront"
	}
	if cfg.mongoURL == "" {
		log.Fatal("MONGO_URL environment variable not set")
	}
	cfg.jwtSecret = os.Getenv("JWT_SECRET")
	if cfg.jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "*"
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.allowedOrigins = append(cfg.allowedOrigins, o)
		}
	}
	return cfg
}

// server carries the injected database handle so handlers stay free of
// package-level state and tests can substitute a mocked deployment.
type server struct {
	db         *mongo.Database
	jwtSecret  []byte
	dealsLimit int64
}

func (s *server) users() *mongo.Collection      { return s.db.Collection("users") }
func (s *server) categories() *mongo.Collection { return s.db.Collection("categories") }
func (s *server) products() *mongo.Collection   { return s.db.Collection("products") }
func (s *server) orders() *mongo.Collection     { return s.db.Collection("orders") }

// reqCtx bounds every store call issued on behalf of a request.
func reqCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func connectDB(cfg config) *mongo.Database {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.mongoURL))
	if err != nil {
		log.Fatal(err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to MongoDB")
	return client.Database(cfg.mongoDB)
}

func ensureIndexes(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	models := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"products": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"categories": {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range models {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			log.Fatal(err)
		}
	}
}

func newRouter(s *server, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/", s.health)
	r.POST("/jwt", s.issueToken)

	api := r.Group("/api")

	// public catalog reads and the sign-in upsert
	api.POST("/users", s.upsertUser)
	api.GET("/categories", s.listCategories)
	api.GET("/products", s.listProducts)
	api.GET("/products/deals", s.listDeals)
	api.GET("/products/:slug", s.getProductBySlug)
	api.GET("/products/category/:categoryId", s.productsByCategory)
	api.GET("/products/category-by-slug/:slug", s.productsByCategorySlug)

	// everything mutating state or reading caller-private data
	auth := api.Group("", s.authRequired)
	{
		auth.GET("/users", s.listUsers)
		auth.GET("/users/admin/:email", s.checkAdmin)
		auth.PATCH("/users/:id/role", s.updateUserRole)

		auth.GET("/cart", s.getCart)
		auth.POST("/cart", s.addToCart)
		auth.DELETE("/cart/:productId", s.removeCartItem)

		auth.GET("/wishlist", s.getWishlist)
		auth.POST("/wishlist", s.addToWishlist)

		auth.POST("/categories", s.createCategory)
		auth.PUT("/categories/:id", s.updateCategory)
		auth.PATCH("/categories/:id", s.updateCategory)
		auth.PATCH("/categories/:id/nav-status", s.toggleNavStatus)
		auth.DELETE("/categories/:id", s.deleteCategory)

		auth.POST("/products", s.createProduct)
		auth.PATCH("/products/:id", s.updateProduct)
		auth.PATCH("/products/status/:id", s.updateProductStatus)
		auth.DELETE("/products/:id", s.deleteProduct)

		auth.GET("/orders", s.listOrders)
		auth.GET("/orders/my-orders", s.myOrders)
		auth.POST("/orders", s.placeOrder)
		auth.PATCH("/orders/:id/status", s.updateOrderStatus)
	}

	return r
}

func (s *server) health(c *gin.Context) {
	c.String(200, "velvetmart backend is running")
}

func main() {
	cfg := loadConfig()
	db := connectDB(cfg)
	ensureIndexes(db)

	s := &server{
		db:         db,
		jwtSecret:  []byte(cfg.jwtSecret),
		dealsLimit: defaultDealsLimit,
	}

	r := newRouter(s, cfg.allowedOrigins)
	log.Printf("Listening on :%s", cfg.port)
	if err := r.Run(":" + cfg.port); err != nil {
		log.Fatal(err)
	}
}
