package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/bsrBe/yearBook/config"
	"github.com/bsrBe/yearBook/controllers"
	"github.com/bsrBe/yearBook/middleware"
	"github.com/bsrBe/yearBook/models"
	"github.com/bsrBe/yearBook/repository"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID.Hex()] = copyUser(user)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, digest string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetPasswordToken == digest && u.ResetPasswordExpire.After(now) {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, page, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	all := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *fakeUserRepo) SetConfirmationToken(_ context.Context, id primitive.ObjectID, token string, sentAt time.Time) error {
	return r.mutate(id, func(u *models.User) {
		u.ConfirmationToken = token
		u.ConfirmationSentAt = sentAt
	})
}

func (r *fakeUserRepo) MarkEmailConfirmed(_ context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) {
		u.IsEmailConfirmed = true
		u.ConfirmationToken = ""
		u.ConfirmationSentAt = time.Time{}
	})
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id primitive.ObjectID, digest string, expire time.Time) error {
	return r.mutate(id, func(u *models.User) {
		u.ResetPasswordToken = digest
		u.ResetPasswordExpire = expire
	})
}

func (r *fakeUserRepo) ClearResetToken(_ context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) {
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = time.Time{}
	})
}

func (r *fakeUserRepo) ReplacePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.mutate(id, func(u *models.User) {
		u.Password = hash
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = time.Time{}
	})
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id string, upd repository.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.ProfileImageURL != nil {
		u.ProfileImageURL = *upd.ProfileImageURL
	}
	if upd.Department != nil {
		u.Department = *upd.Department
	}
	if upd.GraduationYear != nil {
		u.GraduationYear = *upd.GraduationYear
	}
	if upd.Quote != nil {
		u.Quote = *upd.Quote
	}
	if upd.Hobbies != nil {
		u.Hobbies = upd.Hobbies
	}
	if upd.RememberFor != nil {
		u.RememberFor = *upd.RememberFor
	}
	if upd.Achievements != nil {
		u.Achievements = upd.Achievements
	}
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

func (r *fakeUserRepo) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

// byEmail gives tests direct access to the stored record.
func (r *fakeUserRepo) byEmail(email string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

type fakeMemoryRepo struct {
	mu       sync.Mutex
	memories map[string]*models.Memory
}

func newFakeMemoryRepo() *fakeMemoryRepo {
	return &fakeMemoryRepo{memories: make(map[string]*models.Memory)}
}

func (r *fakeMemoryRepo) Create(_ context.Context, memory *models.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if memory.ID.IsZero() {
		memory.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	memory.CreatedAt = now
	memory.UpdatedAt = now
	cp := *memory
	r.memories[memory.ID.Hex()] = &cp
	return nil
}

func (r *fakeMemoryRepo) FindByID(_ context.Context, id string) (*models.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMemoryRepo) List(_ context.Context, page, limit int) ([]models.Memory, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	all := make([]models.Memory, 0, len(r.memories))
	for _, m := range r.memories {
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *fakeMemoryRepo) IncrementLikes(_ context.Context, id string) (*models.Memory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Likes++
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	return &cp, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*models.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	comment.CreatedAt = time.Now().UTC()
	cp := *comment
	r.comments[comment.ID.Hex()] = &cp
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) ListByMemory(_ context.Context, memoryID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.comments {
		if c.MemoryID.Hex() == memoryID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeSignatureRepo struct {
	mu   sync.Mutex
	sigs []*models.Signature
}

func newFakeSignatureRepo() *fakeSignatureRepo {
	return &fakeSignatureRepo{}
}

func (r *fakeSignatureRepo) Create(_ context.Context, sig *models.Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sig.ID.IsZero() {
		sig.ID = primitive.NewObjectID()
	}
	if sig.Style == "" {
		sig.Style = models.StyleCasual
	}
	sig.CreatedAt = time.Now().UTC()
	cp := *sig
	r.sigs = append(r.sigs, &cp)
	return nil
}

func (r *fakeSignatureRepo) ListByRecipient(_ context.Context, recipientID string) ([]models.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := primitive.ObjectIDFromHex(recipientID); err != nil {
		return nil, repository.ErrNotFound
	}
	out := []models.Signature{}
	for _, s := range r.sigs {
		if s.RecipientID.Hex() == recipientID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type testEnv struct {
	router     *gin.Engine
	cfg        *config.Config
	users      *fakeUserRepo
	memories   *fakeMemoryRepo
	comments   *fakeCommentRepo
	signatures *fakeSignatureRepo
	mailer     *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:               []byte("test-session-secret"),
		EmailVerificationSecret: []byte("test-email-secret"),
		JWTExpire:               time.Hour,
		CookieExpire:            time.Hour,
		ResetTokenTTL:           10 * time.Minute,
	}

	env := &testEnv{
		cfg:        cfg,
		users:      newFakeUserRepo(),
		memories:   newFakeMemoryRepo(),
		comments:   newFakeCommentRepo(),
		signatures: newFakeSignatureRepo(),
		mailer:     &fakeMailer{},
	}

	logger := zap.NewNop()
	authCtl := controllers.NewAuthController(env.users, env.mailer, nil, cfg, logger)
	memoryCtl := controllers.NewMemoryController(env.memories, env.comments, logger)
	commentCtl := controllers.NewCommentController(env.comments, env.memories, logger)
	signatureCtl := controllers.NewSignatureController(env.signatures, logger)
	userCtl := controllers.NewUserController(env.users, logger)

	protected := middleware.Auth(cfg.JWTSecret, env.users)

	router := gin.New()
	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authCtl.Register)
			auth.POST("/login", authCtl.Login)
			auth.GET("/me", protected, authCtl.Me)
			auth.POST("/forgotPassword", authCtl.ForgotPassword)
			auth.PUT("/resetPassword/:token", authCtl.ResetPassword)
			auth.GET("/confirmEmail/:token", authCtl.ConfirmEmail)
		}

		memoriesGrp := api.Group("/memories")
		{
			memoriesGrp.GET("", memoryCtl.List)
			memoriesGrp.GET("/:id", memoryCtl.Get)
			memoriesGrp.POST("", protected, memoryCtl.Create)
			memoriesGrp.POST("/:id/like", memoryCtl.Like)
			memoriesGrp.POST("/:id/comments", protected, commentCtl.Add)
		}

		api.DELETE("/comments/:id", protected, commentCtl.Delete)

		signaturesGrp := api.Group("/signatures")
		{
			signaturesGrp.GET("", signatureCtl.ListByRecipient)
			signaturesGrp.POST("", protected, signatureCtl.Create)
		}

		usersGrp := api.Group("/users", protected)
		{
			usersGrp.GET("", userCtl.List)
			usersGrp.GET("/:id", userCtl.Get)
			usersGrp.PUT("/:id", userCtl.Update)
		}
	}

	env.router = router
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its session cookie.
func (e *testEnv) register(t *testing.T, name, email, password string) *http.Cookie {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	return sessionCookie(t, w)
}

// registerConfirmed creates an account already past email confirmation.
func (e *testEnv) registerConfirmed(t *testing.T, name, email, password string) *http.Cookie {
	t.Helper()
	cookie := e.register(t, name, email, password)
	e.users.byEmail(email).IsEmailConfirmed = true
	return cookie
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", middleware.CookieName)
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

// lastPathSegment pulls the token out of an emailed link.
func lastPathSegment(t *testing.T, mailBody string) string {
	t.Helper()
	fields := strings.Fields(mailBody)
	link := fields[len(fields)-1]
	parts := strings.Split(link, "/")
	if len(parts) < 2 {
		t.Fatalf("no link in mail body: %q", mailBody)
	}
	return parts[len(parts)-1]
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.MemoryRepository = (*fakeMemoryRepo)(nil)
var _ repository.CommentRepository = (*fakeCommentRepo)(nil)
var _ repository.SignatureRepository = (*fakeSignatureRepo)(nil)
