package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"reverie/internal/config"
	"reverie/internal/database"
	"reverie/internal/featureflags"
	"reverie/internal/feed"
	"reverie/internal/gateway"
	"reverie/internal/models"
	"reverie/internal/repository"
	"reverie/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// newTestServer wires a Server over in-memory sqlite with no Redis and no
// notifier. Handlers are registered per test on a plain fiber app.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db := setupHandlerTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo := repository.NewUserRepository(db)
	dreamRepo := repository.NewDreamRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	socialRepo := repository.NewSocialRepository(db)
	tagRepo := repository.NewTagRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	learningRepo := repository.NewLearningRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	dreamService := service.NewDreamService(dreamRepo, tagRepo, notifRepo, nil)
	commentService := service.NewCommentService(commentRepo, dreamRepo, notifRepo, nil)
	socialService := service.NewSocialService(socialRepo, userRepo, notifRepo, nil)
	gw := gateway.New(dreamRepo, userRepo, socialRepo, dreamService, commentService, socialService)

	s := &Server{
		config:           &config.Config{JWTSecret: "test_secret"},
		db:               db,
		logger:           logger,
		userRepo:         userRepo,
		dreamRepo:        dreamRepo,
		commentRepo:      commentRepo,
		socialRepo:       socialRepo,
		tagRepo:          tagRepo,
		notifRepo:        notifRepo,
		learningRepo:     learningRepo,
		subscriptionRepo: subscriptionRepo,

		dreamService:        dreamService,
		commentService:      commentService,
		socialService:       socialService,
		userService:         service.NewUserService(userRepo),
		notificationService: service.NewNotificationService(notifRepo),
		learningService:     service.NewLearningService(learningRepo),
		subscriptionService: service.NewSubscriptionService(subscriptionRepo, nil),

		gateway:      gw,
		assembler:    feed.NewAssembler(gw, logger),
		sessions:     newSessionManager(gw, logger),
		featureFlags: featureflags.NewManager("dream_analysis=on"),
	}
	return s, db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password1234!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestDream(t *testing.T, db *gorm.DB, userID uint, title string, isPublic bool) *models.Dream {
	t.Helper()

	dream := &models.Dream{
		UserID:   userID,
		Title:    title,
		Body:     "body of " + title,
		IsPublic: isPublic,
	}
	if err := db.Create(dream).Error; err != nil {
		t.Fatalf("create dream %s: %v", title, err)
	}
	return dream
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// bearerToken mints a JWT for routes that use optional authentication.
func bearerToken(t *testing.T, s *Server, user *models.User) string {
	t.Helper()

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}
