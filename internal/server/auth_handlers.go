package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"campdir/internal/middleware"
	"campdir/internal/models"
	"campdir/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when login hits an unknown email, so the
// request costs the same as a real password check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("campdir-dummy-password"), bcrypt.DefaultCost)

// Register handles POST /api/v1/auth/register
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,password=string,role=string} true "Registration request"
// @Success 201 {object} object{success=bool,token=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.AssignableRole(role) {
		return models.RespondWithError(c,
			models.NewValidationError("Role must be one of: user, publisher"))
	}

	user, err := s.userService.Create(c.Context(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return s.sendTokenResponse(c, user, fiber.StatusCreated)
}

// Login handles POST /api/v1/auth/login
// @Summary Authenticate and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{success=bool,token=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Please provide an email and password"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user == nil {
		// Burn a hash comparison so unknown emails take as long as bad
		// passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return models.RespondWithError(c,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	return s.sendTokenResponse(c, user, fiber.StatusOK)
}

// Logout handles GET /api/v1/auth/logout. If a valid token is presented its
// JTI is blacklisted until expiry; the cookie is always cleared.
// @Summary Log out and revoke the current token
// @Tags auth
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Router /auth/logout [get]
func (s *Server) Logout(c *fiber.Ctx) error {
	tokenString := c.Cookies("token")
	if tokenString == "" {
		if authHeader := c.Get("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenString = authHeader[7:]
		}
	}

	if tokenString != "" && s.redis != nil {
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				jti, _ := claims["jti"].(string)
				exp, _ := claims["exp"].(float64)
				if jti != "" && exp > 0 {
					ttl := time.Until(time.Unix(int64(exp), 0))
					if ttl > 0 {
						if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
							middleware.Logger.WarnContext(c.UserContext(),
								"failed to blacklist token", "error", err)
						}
					}
				}
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
	})

	return respondOK(c, fiber.Map{})
}

// GetMe handles GET /api/v1/auth/me
// @Summary Get the current user
// @Tags auth
// @Produce json
// @Success 200 {object} object{success=bool,data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	return respondOK(c, currentUser(c))
}

// UpdateDetails handles PUT /api/v1/auth/updatedetails. Only name and email
// may change here; passwords go through UpdatePassword.
// @Summary Update the current user's name and email
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} object{success=bool,data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/updatedetails [put]
func (s *Server) UpdateDetails(c *fiber.Ctx) error {
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userService.Update(c.Context(), currentUser(c).ID, service.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, user)
}

// UpdatePassword handles PUT /api/v1/auth/updatepassword
// @Summary Change password, requires the current one
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{current_password=string,new_password=string} true "Password change"
// @Success 200 {object} object{success=bool,token=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/updatepassword [put]
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	user := currentUser(c)
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return models.RespondWithError(c,
			models.NewUnauthorizedError("Password is incorrect"))
	}

	updated, err := s.userService.Update(c.Context(), user.ID, service.UpdateUserInput{
		Password: &req.NewPassword,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return s.sendTokenResponse(c, updated, fiber.StatusOK)
}

// ForgotPassword handles POST /api/v1/auth/forgotpassword. Issues a single-use
// reset token; only its SHA-256 is stored.
// @Summary Request a password reset email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} object{success=bool,data=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/forgotpassword [post]
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, &models.AppError{
			Status:  fiber.StatusNotFound,
			Message: "There is no user with that email",
		})
	}

	rawToken, hash, err := newResetToken()
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	expire := time.Now().Add(10 * time.Minute)
	user.ResetPasswordToken = hash
	user.ResetPasswordExpire = &expire
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, err)
	}

	resetURL := fmt.Sprintf("%s/api/v1/auth/resetpassword/%s", c.BaseURL(), rawToken)
	body := fmt.Sprintf("You are receiving this email because you (or someone else) has requested "+
		"the reset of a password. Please make a PUT request to:\n\n%s", resetURL)

	if err := s.mailer.Send(c.Context(), user.Email, "Password reset token", body); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to send reset email",
			"user_id", user.ID, "error", err)
		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		if uerr := s.userRepo.Update(c.Context(), user); uerr != nil {
			middleware.Logger.ErrorContext(c.UserContext(), "failed to clear reset token",
				"user_id", user.ID, "error", uerr)
		}
		return models.RespondWithError(c, &models.AppError{
			Status:  fiber.StatusInternalServerError,
			Message: "Email could not be sent",
			Err:     err,
		})
	}

	return respondOK(c, "Email sent")
}

// ResetPassword handles PUT /api/v1/auth/resetpassword/:resettoken
// @Summary Reset password with an emailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param resettoken path string true "Reset token"
// @Param request body object{password=string} true "New password"
// @Success 200 {object} object{success=bool,token=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/resetpassword/{resettoken} [put]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	sum := sha256.Sum256([]byte(c.Params("resettoken")))
	hash := hex.EncodeToString(sum[:])

	user, err := s.userRepo.GetByResetTokenHash(c.Context(), hash)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user == nil || user.ResetPasswordExpire == nil || time.Now().After(*user.ResetPasswordExpire) {
		return models.RespondWithError(c, models.NewValidationError("Invalid token"))
	}

	hashed, err := service.HashPassword(req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	user.Password = hashed
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, err)
	}

	return s.sendTokenResponse(c, user, fiber.StatusOK)
}

// sendTokenResponse issues a JWT and mirrors it into an HTTP-only cookie.
func (s *Server) sendTokenResponse(c *fiber.Ctx, user *models.User, status int) error {
	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(time.Duration(s.config.JWTCookieExpireDays) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
	})

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// generateToken creates a JWT token for the given user ID
func (s *Server) generateToken(userID uint) (string, error) {
	// Validate secret exists
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "campdir-api",
		"aud": "campdir-client",
		"exp": now.Add(time.Duration(s.config.JWTExpireHours) * time.Hour).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID so individual tokens can be revoked
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// newResetToken returns a fresh reset token and its stored SHA-256 hex.
func newResetToken() (raw, hash string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(raw))
	return raw, hex.EncodeToString(sum[:]), nil
}
