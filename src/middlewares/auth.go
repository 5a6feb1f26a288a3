package middlewares

import (
	"cbs/src/db"
	"cbs/src/models"
	"cbs/src/types"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	parts := strings.Split(bearerToken, " ")
	if len(parts) != 2 || parts[1] == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := parts[1]
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	var user models.User
	gdb := db.GetDb()
	if err := gdb.
		Model(&models.User{}).
		Where(&models.User{ID: uint(uid)}).
		First(&user).
		Error; err != nil {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ctx.Set("id", user.ID)
	ctx.Set("address", user.Address)
	ctx.Set("email", user.Email)
	ctx.Set("role", string(user.Role))
}

// AdminRequired gates administrator operations. The admin role is
// granted at account provisioning and only another admin can change it.
func AdminRequired(ctx *gin.Context) {
	if ctx.GetString("role") != string(types.ROLE_ADMIN) {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator capability required"})
		return
	}
}

// CurrentUser loads the authenticated account fresh from the database.
func CurrentUser(ctx *gin.Context) (*models.User, error) {
	var user models.User
	gdb := db.GetDb()
	if err := gdb.First(&user, ctx.GetUint("id")).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
