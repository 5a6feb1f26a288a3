package main

import (
	"cbs/src/db"
	"cbs/src/models"
	"cbs/src/types"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func generateJWT(address string, id uint, role string) (string, error) {
	claims := types.Claims{
		Address: address,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(id)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func checkGuestSecret(ctx *gin.Context) bool {
	secret := os.Getenv("API_GUEST_SECRET")
	if secret == "" {
		return true
	}
	supplied := ctx.GetHeader("x-secret")
	return subtle.ConstantTimeCompare([]byte(secret), []byte(supplied)) == 1
}

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	auth := g.Group("/api/v1/auth")
	auth.
		POST("/register", func(ctx *gin.Context) {
			if !checkGuestSecret(ctx) {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user := models.User{
				Address: body.Address,
				Name:    body.Name,
				Email:   body.Email,
				Role:    types.ROLE_MEMBER,
			}
			gdb := db.GetDb()
			if err := gdb.Create(&user).Error; err != nil {
				log.Printf("Error registering account %s: %s\n", body.Address, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not register account"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": user.ID, "address": user.Address})
		}).
		POST("/login", func(ctx *gin.Context) {
			if !checkGuestSecret(ctx) {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var user models.User
			gdb := db.GetDb()
			if err := gdb.Where(&models.User{Address: body.Address}).First(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			token, err := generateJWT(user.Address, user.ID, string(user.Role))
			if err != nil {
				log.Printf("Error generating token for %s: %s\n", user.Address, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token})
		})
	return auth
}
