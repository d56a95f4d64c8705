package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Session represents an official's login session
type Session struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionAuthConfig configures the official/admin session middleware
type SessionAuthConfig struct {
	Users           map[string]string // username -> bcrypt password hash
	SessionDuration time.Duration
	CookieName      string
	CookieSecure    bool
}

// SessionAuth handles cookie-session authentication for the official surface.
// Sessions live in memory; this mirrors the deliberately mocked auth of the
// original application, not a production identity system.
type SessionAuth struct {
	config   SessionAuthConfig
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionAuth creates the session middleware
func NewSessionAuth(config SessionAuthConfig) *SessionAuth {
	if config.SessionDuration == 0 {
		config.SessionDuration = 24 * time.Hour
	}
	if config.CookieName == "" {
		config.CookieName = "session_id"
	}
	if config.Users == nil {
		config.Users = make(map[string]string)
	}

	return &SessionAuth{
		config:   config,
		sessions: make(map[string]*Session),
	}
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with its bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateSessionID generates a secure random session ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// CreateSession creates a new session for the user
func (m *SessionAuth) CreateSession(username string) (string, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &Session{
		Username:  username,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(m.config.SessionDuration),
	}
	return sessionID, nil
}

// GetSession retrieves a session by ID, expiring it lazily
func (m *SessionAuth) GetSession(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		delete(m.sessions, sessionID)
		return nil, false
	}
	return session, true
}

// DeleteSession removes a session
func (m *SessionAuth) DeleteSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ValidateCredentials checks a username/password pair
func (m *SessionAuth) ValidateCredentials(username, password string) bool {
	hash, exists := m.config.Users[username]
	if !exists {
		return false
	}
	return CheckPassword(password, hash)
}

// RequireSession guards the official surface
func (m *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(m.config.CookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "session not found",
			})
			return
		}

		session, valid := m.GetSession(sessionID)
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "session invalid or expired",
			})
			return
		}

		ctx := logger.WithUserID(c.Request.Context(), session.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Set("username", session.Username)

		c.Next()
	}
}

// Login authenticates an official and issues a session cookie
func (m *SessionAuth) Login(c *gin.Context) {
	var loginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid login payload",
			"details": err.Error(),
		})
		return
	}

	if !m.ValidateCredentials(loginRequest.Username, loginRequest.Password) {
		metrics.Get().IncrementLogin(false)
		logger.Audit(c.Request.Context(), logger.AuditEvent{
			Action:   logger.AuditActionLoginFailed,
			UserID:   loginRequest.Username,
			Resource: "session",
			ClientIP: c.ClientIP(),
			Success:  false,
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid credentials",
		})
		return
	}

	sessionID, err := m.CreateSession(loginRequest.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
		return
	}

	metrics.Get().IncrementLogin(true)
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:   logger.AuditActionLogin,
		UserID:   loginRequest.Username,
		Resource: "session",
		ClientIP: c.ClientIP(),
		Success:  true,
	})

	c.SetCookie(
		m.config.CookieName,
		sessionID,
		int(m.config.SessionDuration.Seconds()),
		"/",
		"",
		m.config.CookieSecure,
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"username": loginRequest.Username,
	})
}

// Logout clears the session and cookie
func (m *SessionAuth) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(m.config.CookieName)
	if err == nil {
		m.DeleteSession(sessionID)
		logger.Audit(c.Request.Context(), logger.AuditEvent{
			Action:   logger.AuditActionLogout,
			Resource: "session",
			ClientIP: c.ClientIP(),
			Success:  true,
		})
	}

	c.SetCookie(m.config.CookieName, "", -1, "/", "", m.config.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
