package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sms-backend/database"
	"sms-backend/models"
	"sms-backend/repositories"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupTestDB initializes an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:auth_testdb_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db), "Failed to migrate test database")
	return db
}

func TestGenerateToken(t *testing.T) {
	user := &models.User{
		Model:    gorm.Model{ID: 1},
		Username: "testuser",
	}

	token, err := GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseAndValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
}

func protectedContainer(filter restful.FilterFunction, handler restful.RouteFunction) *restful.Container {
	container := restful.NewContainer()
	ws := new(restful.WebService)
	ws.Route(ws.GET("/protected").Filter(filter).To(handler))
	container.Add(ws)
	return container
}

func get(container *restful.Container, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	container.ServeHTTP(w, req)
	return w
}

func okHandler(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndJson(http.StatusOK, map[string]string{"status": "ok"}, restful.MIME_JSON)
}

func TestAuthFilter(t *testing.T) {
	t.Run("No token", func(t *testing.T) {
		container := protectedContainer(AuthFilter(), okHandler)

		w := get(container, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authorization header required")
	})

	t.Run("Invalid token format", func(t *testing.T) {
		container := protectedContainer(AuthFilter(), okHandler)

		w := get(container, "InvalidTokenFormat")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid authorization header format")
	})

	t.Run("Valid token", func(t *testing.T) {
		container := protectedContainer(AuthFilter(), func(req *restful.Request, resp *restful.Response) {
			userID, ok := req.Attribute(UserIDAttribute).(uint)
			assert.True(t, ok)
			assert.Equal(t, uint(1), userID)
			assert.True(t, IsAuthenticated(req))
			okHandler(req, resp)
		})

		token, err := GenerateToken(&models.User{Model: gorm.Model{ID: 1}, Username: "testuser"})
		require.NoError(t, err)

		w := get(container, "Bearer "+token)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Expired token", func(t *testing.T) {
		container := protectedContainer(AuthFilter(), okHandler)

		claims := &CustomClaims{
			UserID:   1,
			Username: "testuser",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signedToken, err := token.SignedString(mySigningKey)
		require.NoError(t, err)

		w := get(container, "Bearer "+signedToken)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})
}

func TestOptionalAuthFilter(t *testing.T) {
	t.Run("No token proceeds anonymously", func(t *testing.T) {
		container := protectedContainer(OptionalAuthFilter(), func(req *restful.Request, resp *restful.Response) {
			assert.False(t, IsAuthenticated(req))
			okHandler(req, resp)
		})

		w := get(container, "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Valid token records the principal", func(t *testing.T) {
		container := protectedContainer(OptionalAuthFilter(), func(req *restful.Request, resp *restful.Response) {
			assert.True(t, IsAuthenticated(req))
			okHandler(req, resp)
		})

		token, err := GenerateToken(&models.User{Model: gorm.Model{ID: 2}, Username: "optional"})
		require.NoError(t, err)

		w := get(container, "Bearer "+token)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Present but invalid token is rejected", func(t *testing.T) {
		container := protectedContainer(OptionalAuthFilter(), okHandler)

		w := get(container, "Bearer not-a-token")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func loginContainer(t *testing.T, db *gorm.DB) *restful.Container {
	t.Helper()
	container := restful.NewContainer()
	ws := new(restful.WebService)
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	NewLoginResource(repositories.NewUserRepository(db)).RegisterRoutes(ws)
	container.Add(ws)
	return container
}

func postLogin(container *restful.Container, username, password string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	container.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	t.Run("Successful login", func(t *testing.T) {
		db := setupTestDB(t)
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		require.NoError(t, err)
		testUser := models.User{Username: "testuser", Password: string(hashedPassword)}
		require.NoError(t, repositories.NewUserRepository(db).Create(&testUser))

		w := postLogin(loginContainer(t, db), "testuser", "password")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token, "Token should be present in successful login response")

		claims, err := ParseAndValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, testUser.ID, claims.UserID)
		assert.Equal(t, "testuser", claims.Username)
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		db := setupTestDB(t)

		w := postLogin(loginContainer(t, db), "nonexistent", "wrongpassword")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("Incorrect password", func(t *testing.T) {
		db := setupTestDB(t)
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.DefaultCost)
		require.NoError(t, repositories.NewUserRepository(db).Create(&models.User{Username: "testuser", Password: string(hashedPassword)}))

		w := postLogin(loginContainer(t, db), "testuser", "wrongpassword")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})
}
