package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"address-book/internal/auth"
	"address-book/internal/domain"
	"address-book/internal/service"
)

// Options carries the boundary level knobs the handlers need.
type Options struct {
	AllowedOrigins []string
	BannedIPs      []string
	RateLimit      int
	RateWindow     time.Duration
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	contacts service.ContactService
	tokens   *auth.TokenService
	db       *sql.DB
	limiter  *redis.Client
	logger   *logrus.Logger
	opts     Options
}

func NewHandler(users service.UserService, contacts service.ContactService, tokens *auth.TokenService, db *sql.DB, limiter *redis.Client, logger *logrus.Logger, opts Options) *Handler {
	return &Handler{
		users:    users,
		contacts: contacts,
		tokens:   tokens,
		db:       db,
		limiter:  limiter,
		logger:   logger,
		opts:     opts,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.bannedIPMiddleware())
	router.Use(corsMiddleware(h.opts.AllowedOrigins))
	if h.limiter != nil && h.opts.RateLimit > 0 {
		router.Use(h.rateLimitMiddleware())
	}

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", h.signup)
			authGroup.POST("/login", h.login)
			authGroup.GET("/refresh_token", h.refreshToken)
			authGroup.GET("/confirmed_email/:token", h.confirmedEmail)
			authGroup.POST("/request_email", h.requestEmail)
			authGroup.POST("/logout", h.authRequired(), h.logout)
		}

		users := api.Group("/users", h.authRequired())
		{
			users.GET("/me", h.me)
			users.PATCH("/avatar", h.updateAvatar)
		}

		contacts := api.Group("/contacts", h.authRequired())
		{
			contacts.GET("", h.listContacts)
			contacts.POST("", h.createContact)
			contacts.GET("/:id", h.getContact)
			contacts.PUT("/:id", h.updateContact)
			contacts.DELETE("/:id", h.deleteContact)
			contacts.GET("/search/:text", h.searchContacts)
			contacts.GET("/birthdays/:days", h.birthdayContacts)
		}

		api.GET("/healthchecker", h.healthcheck)
	}
}

func (h *Handler) healthcheck(c *gin.Context) {
	var one int
	if err := h.db.QueryRowContext(c.Request.Context(), `SELECT 1`).Scan(&one); err != nil || one != 1 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database is not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the address book API"})
}

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"created_at"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type contactResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Birthday    string `json:"birthday"`
}

const dateLayout = "2006-01-02"

func userToResponse(user *domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Confirmed: user.Confirmed,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func tokensToResponse(pair *service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	}
}

func contactToResponse(contact domain.Contact) contactResponse {
	return contactResponse{
		ID:          contact.ID,
		FirstName:   contact.FirstName,
		LastName:    contact.LastName,
		Email:       contact.Email,
		PhoneNumber: contact.PhoneNumber,
		Birthday:    contact.Birthday.Format(dateLayout),
	}
}

func contactsToResponse(contacts []domain.Contact) []contactResponse {
	resp := make([]contactResponse, len(contacts))
	for i := range contacts {
		resp[i] = contactToResponse(contacts[i])
	}
	return resp
}
