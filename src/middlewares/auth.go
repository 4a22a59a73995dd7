package middlewares

import (
	"context"
	"errors"
	"huletfish/src/db"
	"huletfish/src/models"
	"huletfish/src/types"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

type UserLookup func(ctx context.Context, id uint) (*models.User, error)

func dbUserLookup(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := db.GetDb().WithContext(ctx).Where(&models.User{ID: id}).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthMiddleware verifies HS256 bearer tokens signed with JWT_SECRET.
func AuthMiddleware(ctx *gin.Context) {
	Authenticate([]byte(os.Getenv("JWT_SECRET")), dbUserLookup)(ctx)
}

// Authenticate sets id, email and role on the context. The role comes from the user row, not the token.
func Authenticate(jwtKey []byte, lookup UserLookup) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if len(jwtKey) == 0 {
			log.Println("token error: JWT_SECRET is not configured")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}
		bearerToken := ctx.GetHeader("Authorization")
		reqToken, found := strings.CutPrefix(bearerToken, "Bearer ")
		if !found || strings.TrimSpace(reqToken) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
			return
		}
		claims := &types.Claims{}
		tkn, err := jwt.ParseWithClaims(strings.TrimSpace(reqToken), claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return jwtKey, nil
		})
		if err != nil || !tkn.Valid {
			if err != nil {
				log.Printf("token error: %s\n", err.Error())
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		uid, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || uid == 0 {
			log.Printf("error parsing claims subject %q\n", claims.Subject)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}
		user, err := lookup(ctx.Request.Context(), uint(uid))
		if err != nil || user == nil || user.ID != uint(uid) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User no longer exists"})
			return
		}
		ctx.Set("id", user.ID)
		ctx.Set("email", user.Email)
		ctx.Set("role", user.Role)
		ctx.Next()
	}
}

// IsAdmin reads the role set by Authenticate.
func IsAdmin(ctx *gin.Context) bool {
	role, _ := ctx.Get("role")
	r, ok := role.(types.Role)
	return ok && r == types.ROLE_ADMIN
}
