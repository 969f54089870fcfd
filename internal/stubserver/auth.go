package stubserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

var (
	ErrEmailTaken         = errors.New("email déjà utilisé")
	ErrInvalidCredentials = errors.New("email ou mot de passe incorrect")
	errTokenInvalid       = errors.New("token invalide")
)

type stubClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// tokenManager issues and validates the HS256 bearer tokens the stub
// hands out on login.
type tokenManager struct {
	secret []byte
	ttl    time.Duration
}

func newTokenManager(secret string, ttl time.Duration) *tokenManager {
	return &tokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *tokenManager) Issue(u *User) (string, error) {
	now := time.Now()
	claims := stubClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email: u.Email,
		Role:  string(u.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *tokenManager) Validate(tokenString string) (*stubClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &stubClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, errTokenInvalid
	}
	claims, ok := token.Claims.(*stubClaims)
	if !ok || !token.Valid {
		return nil, errTokenInvalid
	}
	return claims, nil
}

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// authenticate extracts and validates the bearer token, rejecting the
// request with 401 when it is missing or bad.
func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token manquant"})
		return
	}
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token invalide"})
		return
	}
	c.Set(ctxUserID, claims.Subject)
	c.Set(ctxRole, domain.Role(claims.Role))
	c.Next()
}

// requireRole gates a route group to one role.
func requireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.MustGet(ctxRole).(domain.Role) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "accès refusé"})
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.MustGet(ctxUserID).(string)
}
