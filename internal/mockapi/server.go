// Package mockapi is an in-memory stand-in for the MealHub backend and its
// identity provider, served from a single process. It exists for local
// development and end-to-end tests; nothing in it persists across restarts.
package mockapi

import (
	"crypto/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// account is an identity-provider credential record, separate from the
// backend profile the same email maps to.
type account struct {
	UID          string
	Email        string
	DisplayName  string
	PhotoURL     string
	PasswordHash []byte
	Disabled     bool
}

type tokenSession struct {
	Email     string
	ExpiresAt time.Time
}

// Server holds the whole mock state behind one mutex. Handlers are trivial;
// contention is not a concern here.
type Server struct {
	mu sync.Mutex

	apiKey   string
	tokenTTL time.Duration

	// accounts holds provider credentials; profiles the backend records.
	// Both are keyed by email, as are outstanding role requests.
	accounts     map[string]*account
	profiles     map[string]*models.Profile
	meals        map[string]*models.Meal
	orders       map[string]*models.Order
	reviews      map[string]*models.Review
	favorites    map[string]*models.Favorite
	roleRequests map[string]*models.RoleRequest

	accessTokens  map[string]tokenSession
	refreshTokens map[string]string // refresh token -> email
	socialTokens  map[string]string // oauth access token -> email

	engine *gin.Engine
}

// Option tweaks the server, mainly for tests.
type Option func(*Server)

// WithTokenTTL overrides the access-token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// WithAPIKey requires the given X-Api-Key on identity endpoints.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// New builds the mock server with empty stores.
func New(opts ...Option) *Server {
	s := &Server{
		tokenTTL:      time.Hour,
		accounts:      make(map[string]*account),
		profiles:      make(map[string]*models.Profile),
		meals:         make(map[string]*models.Meal),
		orders:        make(map[string]*models.Order),
		reviews:       make(map[string]*models.Review),
		favorites:     make(map[string]*models.Favorite),
		roleRequests:  make(map[string]*models.RoleRequest),
		accessTokens:  make(map[string]tokenSession),
		refreshTokens: make(map[string]string),
		socialTokens:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.buildRouter()
	return s
}

// Handler returns the HTTP handler, for mounting on httptest servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until the process exits.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Api-Key"},
		AllowCredentials: true,
	}))

	// Identity provider surface.
	idp := r.Group("/v1", s.requireAPIKey)
	idp.POST("/accounts/register", s.handleRegister)
	idp.POST("/accounts/login", s.handleLogin)
	idp.POST("/accounts/social", s.handleSocial)
	idp.POST("/accounts/update", s.handleAccountUpdate)
	idp.POST("/accounts/revoke", s.handleRevoke)
	idp.POST("/token", s.handleToken)

	// Marketplace surface. Public reads carry no middleware; everything else
	// goes through the bearer check.
	r.GET("/meals", s.handleListMeals)
	r.GET("/meals/id/:id", s.handleGetMeal)
	r.GET("/reviews/meal/:mealId", s.handleReviewsByMeal)
	r.POST("/users", s.handleCreateUser)

	authed := r.Group("/", s.requireBearer)
	authed.POST("/logout", s.handleLogout)
	authed.GET("/users", s.handleListUsers)
	authed.GET("/users/:email", s.handleGetUser)
	authed.PATCH("/users/:email", s.handleUpdateUser)
	authed.GET("/meals/chef/:email", s.handleMealsByChef)
	authed.POST("/meals", s.handleCreateMeal)
	authed.PATCH("/meals/:id", s.handleUpdateMeal)
	authed.DELETE("/meals/:id", s.handleDeleteMeal)
	authed.POST("/order", s.handleCreateOrder)
	authed.GET("/orders/user/:email", s.handleOrdersByUser)
	authed.GET("/orders/chef/:chefId", s.handleOrdersByChef)
	authed.PATCH("/orders/status/:id", s.handleUpdateOrderStatus)
	authed.PATCH("/payment-success", s.handlePaymentSuccess)
	authed.GET("/reviews/user/:email", s.handleReviewsByUser)
	authed.POST("/reviews", s.handleCreateReview)
	authed.PATCH("/reviews/:id", s.handleUpdateReview)
	authed.DELETE("/reviews/:id", s.handleDeleteReview)
	authed.GET("/favorites", s.handleFavorites)
	authed.POST("/favorites", s.handleAddFavorite)
	authed.DELETE("/favorites/:id", s.handleRemoveFavorite)
	authed.GET("/role-requests", s.handleRoleRequests)
	authed.POST("/role-requests", s.handleCreateRoleRequest)
	authed.PATCH("/role-requests/:email", s.handleResolveRoleRequest)
	authed.GET("/admin/platform-stats", s.handlePlatformStats)

	return r
}

const callerKey = "mockapi.caller"

// requireBearer resolves the access token to its profile and stashes it for
// the handler. Expired or unknown tokens get 401; handlers add their own 403
// role checks on top.
func (s *Server) requireBearer(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
		return
	}

	s.mu.Lock()
	sess, found := s.accessTokens[token]
	var profile *models.Profile
	if found && time.Now().Before(sess.ExpiresAt) {
		profile = s.profiles[sess.Email]
	}
	s.mu.Unlock()

	if profile == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		return
	}
	if profile.Status == models.StatusFraud {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "account suspended"})
		return
	}
	c.Set(callerKey, profile)
	c.Next()
}

func caller(c *gin.Context) *models.Profile {
	return c.MustGet(callerKey).(*models.Profile)
}

func requireRole(c *gin.Context, role models.Role) bool {
	if caller(c).Role != role {
		c.JSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
		return false
	}
	return true
}

func newID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
