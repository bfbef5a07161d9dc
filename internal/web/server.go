package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/leonid6372/cars-bot/internal/boterrs"
	"github.com/leonid6372/cars-bot/internal/common/clients/cryptomus"
	"github.com/leonid6372/cars-bot/internal/common/config"
	"github.com/leonid6372/cars-bot/internal/common/domain"
	"github.com/leonid6372/cars-bot/pkg/errs"
	"github.com/leonid6372/cars-bot/pkg/log"
	"go.uber.org/zap"
)

type UsersGetter interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

type PaymentChecker interface {
	CheckPayment(ctx context.Context, id uuid.UUID) (domain.PaymentStatus, error)
}

type Server struct {
	cfg     *config.Web
	users   UsersGetter
	checker PaymentChecker

	http *http.Server
}

// New builds the HTTP server. checker may be nil when payments are disabled,
// then the webhook route is not registered.
func New(cfg *config.Web, users UsersGetter, checker PaymentChecker) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		users:   users,
		checker: checker,
	}

	router, err := s.router()
	if err != nil {
		return nil, err
	}

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func (s *Server) router() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	if err := router.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
		return nil, errs.NewStack(err)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/users/:id", s.getUserHandler)
	}

	if s.checker != nil {
		webhooks := router.Group("/webhooks", allowedIPs(s.cfg.WebhookCIDRs))
		{
			webhooks.POST("/cryptomus", s.cryptomusWebhookHandler)
		}
	}

	return router, nil
}

// Run serves until ctx is cancelled and then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info("http server starting", zap.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return errs.NewStack(err)
	}

	log.Info("http server stopped")

	return nil
}

type userResponse struct {
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

func (s *Server) getUserHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := s.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		log.Error("failed to get user", zap.Int64("user_id", id), errs.Field(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, userResponse{Username: user.Username, Balance: user.Balance})
}

// cryptomusWebhookHandler does not trust the body: the payment is re-checked
// through the gateway API by its order id.
func (s *Server) cryptomusWebhookHandler(c *gin.Context) {
	var webhook cryptomus.Webhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := uuid.Parse(webhook.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	status, err := s.checker.CheckPayment(c.Request.Context(), id)
	switch {
	case errors.Is(err, boterrs.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	case err != nil:
		log.Error("failed to check payment from webhook", zap.String("order_id", webhook.OrderID), errs.Field(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func allowedIPs(cidrs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAllowedIP(c.ClientIP(), cidrs) {
			log.Warn("webhook from not allowed ip", zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

// isAllowedIP reports whether ip belongs to one of cidrs. Invalid CIDRs are skipped.
func isAllowedIP(ip string, cidrs []string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}

	for _, cidr := range cidrs {
		_, netblock, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}

		if netblock.Contains(parsed) {
			return true
		}
	}

	return false
}
