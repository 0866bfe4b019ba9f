package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/clipsum/backend/internal/auth"
	"github.com/clipsum/backend/internal/database/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.Video{},
		&models.Summary{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TestPassword is the plaintext behind every CreateTestUser hash.
const TestPassword = "Sup3r$ecret"

// CreateTestUser creates a verified user
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		IsVerified:   true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestVideo creates a video owned by the given user
func CreateTestVideo(t *testing.T, db *gorm.DB, userID uuid.UUID, status models.VideoStatus) *models.Video {
	t.Helper()

	video := &models.Video{
		Base: models.Base{
			ID: uuid.New(),
		},
		UserID:   userID,
		Title:    "Test Video",
		FileName: "test.mp4",
		FileKey:  "videos/" + uuid.New().String() + ".mp4",
		FileSize: 1024,
		MimeType: "video/mp4",
		Status:   status,
	}

	if err := db.Create(video).Error; err != nil {
		t.Fatalf("failed to create test video: %v", err)
	}

	return video
}

// CreateTestOTP stores a code for the given user and purpose
func CreateTestOTP(t *testing.T, db *gorm.DB, userID uuid.UUID, code string, otpType models.OTPType, expiresAt time.Time) *models.OTP {
	t.Helper()

	otp := &models.OTP{
		Base: models.Base{
			ID: uuid.New(),
		},
		UserID:    userID,
		Code:      code,
		Type:      otpType,
		ExpiresAt: expiresAt,
	}

	if err := db.Create(otp).Error; err != nil {
		t.Fatalf("failed to create test otp: %v", err)
	}

	return otp
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// SentMail records one dispatched message.
type SentMail struct {
	To      string
	Subject string
	Text    string
}

// FakeMailer captures outgoing mail for assertions.
type FakeMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Fail bool
}

func (m *FakeMailer) Send(ctx context.Context, to, subject, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("smtp unavailable")
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Text: text})
	return nil
}

var otpPattern = regexp.MustCompile(`\d{6}`)

// LastCode extracts the 6-digit code from the most recent message.
func (m *FakeMailer) LastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		t.Fatal("no mail sent")
	}
	code := otpPattern.FindString(m.Sent[len(m.Sent)-1].Text)
	if code == "" {
		t.Fatalf("no OTP in mail body: %q", m.Sent[len(m.Sent)-1].Text)
	}
	return code
}

// FakeObjectStore is an in-memory stand-in for the S3 gateway.
type FakeObjectStore struct {
	mu          sync.Mutex
	Objects     map[string]int64 // key -> size
	Deleted     []string
	FailSize    bool
	FailDelete  bool
	FailPresign bool
}

func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{Objects: make(map[string]int64)}
}

// Put simulates a completed client upload.
func (s *FakeObjectStore) Put(key string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = size
}

func (s *FakeObjectStore) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	if s.FailPresign {
		return "", errors.New("presign unavailable")
	}
	return "https://storage.test/upload/" + key, nil
}

func (s *FakeObjectStore) PresignDownload(ctx context.Context, key string) (string, error) {
	if s.FailPresign {
		return "", errors.New("presign unavailable")
	}
	return "https://storage.test/download/" + key, nil
}

func (s *FakeObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete {
		return errors.New("delete unavailable")
	}
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	return nil
}

func (s *FakeObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok, nil
}

func (s *FakeObjectStore) Size(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSize {
		return 0, errors.New("head unavailable")
	}
	size, ok := s.Objects[key]
	if !ok {
		return 0, errors.New("object not found")
	}
	return size, nil
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Mailer     *FakeMailer
	Store      *FakeObjectStore
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, fakes, user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	user := CreateTestUser(t, db)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Mailer:     &FakeMailer{},
		Store:      NewFakeObjectStore(),
		User:       user,
		Token:      token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
