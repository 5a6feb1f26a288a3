package main

import (
	"bytes"
	"cbs/src/boot"
	"cbs/src/config"
	"cbs/src/db"
	"cbs/src/merkle"
	"cbs/src/models"
	"cbs/src/types"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testAdminAddr  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testMemberAddr = "0x1111111111111111111111111111111111111111"
)

type TestSuite struct {
	suite.Suite
	DB          *gorm.DB
	Router      *gin.Engine
	AdminToken  string
	MemberToken string
	Member      models.User
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	os.Setenv("ADMIN_ADDRESS", testAdminAddr)
	os.Setenv("API_QRC_SECRET", "6368616e676520746869732070617373776f726420746f206120736563726574")

	gdb, err := gorm.Open(sqlite.Open("file:mainsuite?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("error opening test database: %s", err.Error())
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("error accessing inner db instance: %s", err.Error())
	}
	sqlDB.SetMaxOpenConns(1)
	db.NewDB(gdb)
	s.DB = boot.InitDb()

	registerValidators()
	router := setupRouter()
	registerRoutes(router)
	s.Router = router

	member := models.User{Address: testMemberAddr, Name: "Member", Email: "member@example.com", Role: types.ROLE_MEMBER}
	if err := s.DB.Create(&member).Error; err != nil {
		log.Fatalf("Could not create member account: %s\n", err.Error())
	}
	s.Member = member

	var admin models.User
	if err := s.DB.Where(&models.User{Address: testAdminAddr}).First(&admin).Error; err != nil {
		log.Fatalf("Admin account missing after boot: %s\n", err.Error())
	}

	adminToken, err := generateJWT(admin.Address, admin.ID, string(admin.Role))
	if err != nil {
		log.Fatalf("Error generating admin token: %s\n", err.Error())
	}
	memberToken, err := generateJWT(member.Address, member.ID, string(member.Role))
	if err != nil {
		log.Fatalf("Error generating member token: %s\n", err.Error())
	}
	s.AdminToken = adminToken
	s.MemberToken = memberToken
}

func (s *TestSuite) request(method, target, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.Nil(s.T(), err)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPingRoute() {
	w := s.request("GET", "/", "", nil)
	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestAuthRequired() {
	w := s.request("GET", "/api/v1/halls", "", nil)
	assert.Equal(s.T(), 401, w.Code)

	w = s.request("GET", "/api/v1/halls", "not-a-token", nil)
	assert.Equal(s.T(), 401, w.Code)

	// a bare scheme with no token must fail cleanly, not crash the
	// handler chain
	req, _ := http.NewRequest("GET", "/api/v1/halls", nil)
	req.Header.Set("Authorization", "Bearer")
	w = httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(s.T(), 401, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/halls", nil)
	req.Header.Set("Authorization", "Bearer ")
	w = httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestRegisterAndLogin() {
	w := s.request("POST", "/api/v1/auth/register", "", map[string]any{
		"address": "0x7777777777777777777777777777777777777777",
		"name":    "Newcomer",
		"email":   "newcomer@example.com",
	})
	assert.Equal(s.T(), 201, w.Code)

	w = s.request("POST", "/api/v1/auth/login", "", map[string]any{
		"address": "0x7777777777777777777777777777777777777777",
	})
	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	token := gjson.Get(string(rbytes), "token").String()
	assert.NotEmpty(s.T(), token)

	w = s.request("GET", "/api/v1/wallet", token, nil)
	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestAdminGateOnHalls() {
	w := s.request("POST", "/api/v1/halls", s.MemberToken, map[string]any{
		"name":        "Sneaky Hall",
		"total_seats": 10,
	})
	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestBookingLifecycle() {
	t := s.T()

	w := s.request("POST", "/api/v1/halls", s.AdminToken, map[string]any{
		"name":        "Grand Hall",
		"total_seats": 20,
	})
	assert.Equal(t, 201, w.Code)
	raw, _ := io.ReadAll(w.Body)
	hallID := gjson.Get(string(raw), "id").Uint()
	assert.NotZero(t, hallID)

	start := time.Now().Add(24 * time.Hour).Format(config.TIME_PARSE_FORMAT)
	w = s.request("POST", "/api/v1/movies", s.AdminToken, map[string]any{
		"hall":         hallID,
		"title":        "Premiere",
		"start_time":   start,
		"ticket_price": 500,
	})
	assert.Equal(t, 201, w.Code)
	raw, _ = io.ReadAll(w.Body)
	movieID := gjson.Get(string(raw), "id").Uint()
	assert.NotZero(t, movieID)

	// a past showtime never passes validation
	w = s.request("POST", "/api/v1/movies", s.AdminToken, map[string]any{
		"hall":         hallID,
		"title":        "Rerun",
		"start_time":   time.Now().Add(-time.Hour).Format(config.TIME_PARSE_FORMAT),
		"ticket_price": 500,
	})
	assert.Equal(t, 400, w.Code)

	w = s.request("POST", "/api/v1/wallet/deposit", s.MemberToken, map[string]any{"amount": 2_000})
	assert.Equal(t, 200, w.Code)

	w = s.request("POST", "/api/v1/bookings", s.MemberToken, map[string]any{
		"movie": movieID,
		"value": 500,
	})
	assert.Equal(t, 201, w.Code)
	raw, _ = io.ReadAll(w.Body)
	tokenID := gjson.Get(string(raw), "token_id").Uint()
	assert.NotZero(t, tokenID)

	w = s.request("GET", fmt.Sprintf("/api/v1/movies/%d", movieID), s.MemberToken, nil)
	assert.Equal(t, 200, w.Code)
	raw, _ = io.ReadAll(w.Body)
	assert.Equal(t, int64(19), gjson.Get(string(raw), "data.available_tickets").Int())

	w = s.request("GET", "/api/v1/treasury", s.AdminToken, nil)
	assert.Equal(t, 200, w.Code)
	raw, _ = io.ReadAll(w.Body)
	assert.Equal(t, int64(500), gjson.Get(string(raw), "data.balance").Int())
	assert.Equal(t, int64(0), gjson.Get(string(raw), "data.withdrawable").Int())

	// booking the same movie twice from one address is refused
	w = s.request("POST", "/api/v1/bookings", s.MemberToken, map[string]any{
		"movie": movieID,
		"value": 500,
	})
	assert.Equal(t, 409, w.Code)

	// cancel a day ahead of showtime: full refund
	w = s.request("PUT", fmt.Sprintf("/api/v1/bookings/%d/cancel", tokenID), s.MemberToken, nil)
	assert.Equal(t, 200, w.Code)
	raw, _ = io.ReadAll(w.Body)
	assert.Equal(t, int64(500), gjson.Get(string(raw), "refund").Int())

	w = s.request("GET", "/api/v1/wallet", s.MemberToken, nil)
	assert.Equal(t, 200, w.Code)
	raw, _ = io.ReadAll(w.Body)
	assert.Equal(t, int64(2_000), gjson.Get(string(raw), "balance").Int())

	w = s.request("GET", fmt.Sprintf("/api/v1/movies/%d", movieID), s.MemberToken, nil)
	raw, _ = io.ReadAll(w.Body)
	assert.Equal(t, int64(20), gjson.Get(string(raw), "data.available_tickets").Int())

	w = s.request("GET", fmt.Sprintf("/api/v1/tickets/%d", tokenID), s.MemberToken, nil)
	assert.Equal(t, 404, w.Code)

	w = s.request("GET", "/api/v1/trail", s.AdminToken, nil)
	assert.Equal(t, 200, w.Code)
	raw, _ = io.ReadAll(w.Body)
	trail := string(raw)
	assert.True(t, strings.Contains(trail, "HallCreated"))
	assert.True(t, strings.Contains(trail, "TicketBooked"))
	assert.True(t, strings.Contains(trail, "TicketCanceled"))
}

func (s *TestSuite) TestAirdropClaimFlow() {
	t := s.T()

	w := s.request("POST", "/api/v1/halls", s.AdminToken, map[string]any{
		"name":        "Preview Hall",
		"total_seats": 8,
	})
	assert.Equal(t, 201, w.Code)
	raw, _ := io.ReadAll(w.Body)
	hallID := gjson.Get(string(raw), "id").Uint()

	start := time.Now().Add(48 * time.Hour).Format(config.TIME_PARSE_FORMAT)
	w = s.request("POST", "/api/v1/movies", s.AdminToken, map[string]any{
		"hall":         hallID,
		"title":        "Preview Night",
		"start_time":   start,
		"ticket_price": 500,
	})
	assert.Equal(t, 201, w.Code)
	raw, _ = io.ReadAll(w.Body)
	movieID := gjson.Get(string(raw), "id").Uint()

	memberLeaf, err := merkle.LeafForAddress(testMemberAddr)
	assert.Nil(t, err)
	otherLeaf, err := merkle.LeafForAddress("0x8888888888888888888888888888888888888888")
	assert.Nil(t, err)
	root := merkle.Keccak256(sorted(memberLeaf, otherLeaf))

	w = s.request("POST", "/api/v1/airdrops", s.AdminToken, map[string]any{
		"movie":       movieID,
		"merkle_root": root.String(),
		"start_at":    time.Now().Add(-time.Hour).Format(config.TIME_PARSE_FORMAT),
		"end_at":      time.Now().Add(time.Hour).Format(config.TIME_PARSE_FORMAT),
	})
	assert.Equal(t, 201, w.Code)

	w = s.request("POST", "/api/v1/airdrops/claim", s.MemberToken, map[string]any{
		"movie": movieID,
		"proof": []string{otherLeaf.String()},
	})
	assert.Equal(t, 201, w.Code)
	raw, _ = io.ReadAll(w.Body)
	tokenID := gjson.Get(string(raw), "token_id").Uint()
	assert.NotZero(t, tokenID)

	// claimed tickets cost nothing and leave paid inventory untouched
	w = s.request("GET", fmt.Sprintf("/api/v1/tickets/%d", tokenID), s.MemberToken, nil)
	assert.Equal(t, 200, w.Code)
	raw, _ = io.ReadAll(w.Body)
	assert.Equal(t, int64(0), gjson.Get(string(raw), "data.total_cost").Int())

	w = s.request("GET", fmt.Sprintf("/api/v1/movies/%d", movieID), s.MemberToken, nil)
	raw, _ = io.ReadAll(w.Body)
	assert.Equal(t, int64(8), gjson.Get(string(raw), "data.available_tickets").Int())

	// once claimed, always claimed
	w = s.request("POST", "/api/v1/airdrops/claim", s.MemberToken, map[string]any{
		"movie": movieID,
		"proof": []string{otherLeaf.String()},
	})
	assert.Equal(t, 409, w.Code)
}

func sorted(a, b merkle.Hash) ([]byte, []byte) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b[:], a[:]
	}
	return a[:], b[:]
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
