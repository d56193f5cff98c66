package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sms-backend/models"
	"sms-backend/repositories"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// mySigningKey should be a strong, randomly generated secret key,
// and it should be stored securely (e.g., in environment variables,
// a key management service, etc.), NOT hardcoded in your source code.
var mySigningKey = []byte("mySigningKey")

// SetSigningKey allows setting the key from outside the package.
func SetSigningKey(key []byte) {
	if len(key) > 0 {
		mySigningKey = key
	}
}

// Request attribute keys set by the auth filters.
const (
	UserIDAttribute   = "user_id"
	UsernameAttribute = "username"
)

// CustomClaims represents the custom claims you want to include in your JWT.
type CustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT for the given user.
func GenerateToken(user *models.User) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &CustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "sms-backend",
			Subject:   "user-auth",
			Audience:  []string{"sms-backend-users"},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(mySigningKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseAndValidateToken parses and validates a bearer token string.
func ParseAndValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return mySigningKey, nil
	})

	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok {
			if ve.Errors&jwt.ValidationErrorMalformed != 0 {
				return nil, errors.New("malformed token")
			} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
				return nil, errors.New("token is either expired or not active yet")
			} else if ve.Errors&jwt.ValidationErrorSignatureInvalid != 0 {
				return nil, errors.New("invalid token signature")
			}
		}
		return nil, fmt.Errorf("couldn't handle this token: %w", err)
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func bearerToken(req *restful.Request) (string, error) {
	authHeader := req.HeaderParameter("Authorization")
	if authHeader == "" {
		return "", errors.New("Authorization header required")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("Invalid authorization header format")
	}
	return parts[1], nil
}

// AuthFilter creates a go-restful FilterFunction for JWT authentication.
// Requests without a valid bearer token are rejected with 401.
func AuthFilter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		tokenString, err := bearerToken(req)
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
			return
		}

		claims, err := ParseAndValidateToken(tokenString)
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
			return
		}

		// Store user information in request attributes for use by subsequent processing functions
		req.SetAttribute(UserIDAttribute, claims.UserID)
		req.SetAttribute(UsernameAttribute, claims.Username)

		chain.ProcessFilter(req, resp)
	}
}

// OptionalAuthFilter records the principal when a valid bearer token is
// present and lets the request through anonymously when no Authorization
// header is sent. A token that is present but invalid is still rejected, so
// a client never silently degrades to anonymous visibility.
func OptionalAuthFilter() restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		if req.HeaderParameter("Authorization") == "" {
			chain.ProcessFilter(req, resp)
			return
		}

		tokenString, err := bearerToken(req)
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
			return
		}
		claims, err := ParseAndValidateToken(tokenString)
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
			return
		}

		req.SetAttribute(UserIDAttribute, claims.UserID)
		req.SetAttribute(UsernameAttribute, claims.Username)
		chain.ProcessFilter(req, resp)
	}
}

// IsAuthenticated reports whether an auth filter recorded a principal for
// this request.
func IsAuthenticated(req *restful.Request) bool {
	_, ok := req.Attribute(UserIDAttribute).(uint)
	return ok
}

// --- go-restful login processing function ---

// LoginCredentials defines the structure of the login request
type LoginCredentials struct {
	Username string `json:"username" description:"Username for login"`
	Password string `json:"password" description:"Password for login"`
}

// LoginResponse defines the structure of the login response
type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// LoginResource handles token issuance against the user store.
type LoginResource struct {
	users repositories.UserRepository
}

// NewLoginResource creates a LoginResource backed by the given repository.
func NewLoginResource(users repositories.UserRepository) *LoginResource {
	return &LoginResource{users: users}
}

// RegisterRoutes sets up the login route on a go-restful WebService.
func (l *LoginResource) RegisterRoutes(ws *restful.WebService) {
	ws.Route(ws.POST("/login").To(l.loginHandler).
		Doc("Exchange credentials for a JWT").
		Reads(LoginCredentials{}).
		Returns(http.StatusOK, "Token issued", LoginResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body", nil).
		Returns(http.StatusUnauthorized, "Invalid credentials", nil))
}

func (l *LoginResource) loginHandler(request *restful.Request, response *restful.Response) {
	creds := new(LoginCredentials)
	err := request.ReadEntity(creds)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}

	if creds.Username == "" || creds.Password == "" {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Username and password are required"}, restful.MIME_JSON)
		return
	}

	user, err := l.users.FindByUsername(creds.Username)
	if err != nil {
		// Avoid revealing whether the user exists
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = response.WriteHeaderAndJson(http.StatusUnauthorized, LoginResponse{Message: "Invalid credentials"}, restful.MIME_JSON)
			return
		}
		_ = response.WriteHeaderAndJson(http.StatusInternalServerError, LoginResponse{Message: "Could not verify credentials"}, restful.MIME_JSON)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, LoginResponse{Message: "Invalid credentials"}, restful.MIME_JSON)
		return
	}

	token, err := GenerateToken(user)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusInternalServerError, LoginResponse{Message: "Could not generate token"}, restful.MIME_JSON)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{Token: token}, restful.MIME_JSON)
}
