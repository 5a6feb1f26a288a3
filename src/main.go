package main

import (
	"cbs/src/airdrop"
	"cbs/src/boot"
	"cbs/src/cinema"
	"cbs/src/config"
	"cbs/src/middlewares"
	"cbs/src/registry"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

// futuredate rejects showtimes and claim windows that are not strictly
// in the future at request time.
var futureDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	parsed, err := time.Parse(config.TIME_PARSE_FORMAT, value)
	if err != nil {
		return false
	}
	return parsed.After(time.Now())
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("futuredate", futureDateValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	r := gin.Default()
	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	v1 := g.Group("/api/v1")
	return v1
}

// statusForError maps domain errors onto HTTP statuses. Everything the
// ledgers reject is a synchronous, atomic abort, so there is exactly
// one status per failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, cinema.ErrHallNotFound),
		errors.Is(err, cinema.ErrMovieNotFound),
		errors.Is(err, airdrop.ErrMovieNotFound),
		errors.Is(err, airdrop.ErrWindowNotFound),
		errors.Is(err, registry.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, cinema.ErrNotTicketOwner):
		return http.StatusForbidden
	case errors.Is(err, cinema.ErrSoldOut),
		errors.Is(err, cinema.ErrTicketRedeemed),
		errors.Is(err, cinema.ErrWithdrawExceeds),
		errors.Is(err, registry.ErrDoubleBooking),
		errors.Is(err, registry.ErrAlreadyCheckedIn),
		errors.Is(err, registry.ErrTransferToHolder),
		errors.Is(err, airdrop.ErrWindowExists),
		errors.Is(err, airdrop.ErrAlreadyClaimed):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func abortWithError(ctx *gin.Context, err error) {
	ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func registerRoutes(router *gin.Engine) {
	guestAuthRoutes(router)

	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.AuthMiddleware)
	hallHandlers(apiv1)
	movieHandlers(apiv1)
	bookingHandlers(apiv1)
	ticketHandlers(apiv1)
	walletHandlers(apiv1)
	airdropHandlers(apiv1)
	treasuryHandlers(apiv1)
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()

	router := setupRouter()
	router.Use(cors.Default())
	registerValidators()
	registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server stopped: %s", err.Error())
	}
}
