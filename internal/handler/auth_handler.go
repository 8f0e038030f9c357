package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"repairshop/internal/model"
	"repairshop/pkg/database"
	"repairshop/pkg/jwtutil"
	"repairshop/pkg/logger"
	"repairshop/prometheus"
)

// Register creates a new user account. Accounts are tenant-less until
// the user creates an organization or accepts an invitation.
func Register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var existing model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&existing)
	if result.Error == nil {
		prometheus.RecordAuthError("email_taken")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email is already registered"})
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Error("Failed to check existing user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("email", user.Email), zap.Uint("id", user.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Login authenticates a user. When the user has a default organization
// the issued token carries its tenant context; otherwise the token is
// tenant-less and the caller selects an organization afterwards.
func Login(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if err := database.GetDB().Where("email = ?", req.Email).First(&user).Error; err != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Default organization, if the user has one.
	var membership model.Membership
	var token string
	var err error
	result := database.GetDB().Preload("Tenant").
		Where("user_id = ? AND is_default = ? AND status = ?", user.ID, true, model.MembershipActive).
		First(&membership)

	response := echo.Map{
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	}

	if result.Error == nil {
		tenantID := membership.TenantID
		token, err = jwtutil.GenerateTokenWithTenant(user.Email, user.ID, &tenantID, membership.Tenant.Slug, membership.Role)
		response["tenant"] = echo.Map{
			"id":   membership.TenantID,
			"name": membership.Tenant.Name,
			"slug": membership.Tenant.Slug,
			"role": membership.Role,
		}
	} else {
		token, err = jwtutil.GenerateToken(user.Email, user.ID)
	}
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}
	response["token"] = token

	log.Info("User logged in", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, response)
}
