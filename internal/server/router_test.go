package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/config"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Project{}, &models.Bid{}))
	return db
}

func newTestApp(t *testing.T) (*gin.Engine, *gorm.DB, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	cfg := &config.Config{
		SecretKey:      "test-secret",
		UploadDir:      t.TempDir(),
		TemplateGlob:   filepath.Join("..", "..", "web", "templates", "*.html"),
		MaxUploadBytes: config.MaxUploadBytes,
	}
	return NewRouter(db, cfg), db, cfg
}

func postForm(t *testing.T, r *gin.Engine, path string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, r *gin.Engine, path string, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session" && ck.Value != "" {
			return ck
		}
	}
	return nil
}

func register(t *testing.T, r *gin.Engine, username, email, password string) *http.Cookie {
	t.Helper()

	w := postForm(t, r, "/register", url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	ck := sessionCookie(w)
	require.NotNil(t, ck, "register should establish a session")
	return ck
}

func createProject(t *testing.T, r *gin.Engine, session *http.Cookie, title, description, budget, imageName, imageContent string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("description", description))
	require.NoError(t, mw.WriteField("budget", budget))
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write([]byte(imageContent))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/projects/new", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(session)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBidAcceptanceScenario(t *testing.T) {
	r, db, _ := newTestApp(t)

	alice := register(t, r, "alice", "alice@x.com", "pw1")
	bob := register(t, r, "bob", "bob@x.com", "pw2")
	carol := register(t, r, "carol", "carol@x.com", "pw3")

	w := createProject(t, r, alice, "Logo design", "Need a logo", "$100", "", "")
	require.Equal(t, http.StatusFound, w.Code)

	var project models.Project
	require.NoError(t, db.First(&project).Error)
	assert.Equal(t, "Logo design", project.Title)
	assert.Equal(t, "$100", project.Budget)

	detail := fmt.Sprintf("/projects/%d/bid", project.ID)
	w = postForm(t, r, detail, url.Values{"price": {"$80"}}, bob)
	require.Equal(t, http.StatusFound, w.Code)

	var bobBid models.Bid
	require.NoError(t, db.Where("price = ?", "$80").First(&bobBid).Error)
	assert.False(t, bobBid.Accepted)

	w = postForm(t, r, fmt.Sprintf("/projects/%d/bid/%d/accept", project.ID, bobBid.ID), nil, alice)
	require.Equal(t, http.StatusFound, w.Code)

	require.NoError(t, db.First(&bobBid, bobBid.ID).Error)
	assert.True(t, bobBid.Accepted)

	w = postForm(t, r, detail, url.Values{"price": {"$70"}}, carol)
	require.Equal(t, http.StatusFound, w.Code)

	var carolBid models.Bid
	require.NoError(t, db.Where("price = ?", "$70").First(&carolBid).Error)

	w = postForm(t, r, fmt.Sprintf("/projects/%d/bid/%d/accept", project.ID, carolBid.ID), nil, alice)
	require.Equal(t, http.StatusFound, w.Code)

	require.NoError(t, db.First(&carolBid, carolBid.ID).Error)
	require.NoError(t, db.First(&bobBid, bobBid.ID).Error)
	assert.True(t, carolBid.Accepted)
	assert.False(t, bobBid.Accepted, "accepting carol's bid must flip bob's back")

	var accepted int64
	require.NoError(t, db.Model(&models.Bid{}).Where("project_id = ? AND accepted = ?", project.ID, true).Count(&accepted).Error)
	assert.EqualValues(t, 1, accepted)
}

func TestAcceptBidForbiddenForNonOwner(t *testing.T) {
	r, db, _ := newTestApp(t)

	alice := register(t, r, "alice", "alice@x.com", "pw1")
	bob := register(t, r, "bob", "bob@x.com", "pw2")

	w := createProject(t, r, alice, "Logo design", "Need a logo", "", "", "")
	require.Equal(t, http.StatusFound, w.Code)

	var project models.Project
	require.NoError(t, db.First(&project).Error)

	w = postForm(t, r, fmt.Sprintf("/projects/%d/bid", project.ID), url.Values{"price": {"$80"}}, bob)
	require.Equal(t, http.StatusFound, w.Code)

	var bid models.Bid
	require.NoError(t, db.First(&bid).Error)

	w = postForm(t, r, fmt.Sprintf("/projects/%d/bid/%d/accept", project.ID, bid.ID), nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, db.First(&bid, bid.ID).Error)
	assert.False(t, bid.Accepted, "forbidden accept must not mutate the bid")
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	r, db, _ := newTestApp(t)

	register(t, r, "alice", "alice@x.com", "pw1")

	w := postForm(t, r, "/register", url.Values{
		"username": {"alice"},
		"email":    {"other@x.com"},
		"password": {"pw2"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/register", w.Header().Get("Location"))
	assert.Nil(t, sessionCookie(w), "duplicate registration must not issue a session")

	w = postForm(t, r, "/register", url.Values{
		"username": {"alice2"},
		"email":    {"alice@x.com"},
		"password": {"pw2"},
	}, nil)
	assert.Equal(t, "/register", w.Header().Get("Location"))
	assert.Nil(t, sessionCookie(w))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterMissingFields(t *testing.T) {
	r, db, _ := newTestApp(t)

	w := postForm(t, r, "/register", url.Values{
		"username": {"alice"},
		"email":    {""},
		"password": {"pw1"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/register", w.Header().Get("Location"))
	assert.Nil(t, sessionCookie(w))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLogin(t *testing.T) {
	r, _, _ := newTestApp(t)

	register(t, r, "alice", "alice@x.com", "correctpass")

	w := postForm(t, r, "/login", url.Values{"username": {"alice"}, "password": {"wrongpass"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, sessionCookie(w))

	w = postForm(t, r, "/login", url.Values{"username": {"alice"}, "password": {"correctpass"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.NotNil(t, sessionCookie(w))

	// identifier may also be the email
	w = postForm(t, r, "/login", url.Values{"username": {"alice@x.com"}, "password": {"correctpass"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.NotNil(t, sessionCookie(w))

	w = postForm(t, r, "/login", url.Values{"username": {"nobody"}, "password": {"correctpass"}}, nil)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Nil(t, sessionCookie(w))
}

func TestUploadExtensionFilter(t *testing.T) {
	r, db, cfg := newTestApp(t)

	alice := register(t, r, "alice", "alice@x.com", "pw1")

	w := createProject(t, r, alice, "With exe", "desc", "", "payload.exe", "MZ")
	require.Equal(t, http.StatusFound, w.Code)

	var project models.Project
	require.NoError(t, db.Where("title = ?", "With exe").First(&project).Error)
	assert.Empty(t, project.Image, "exe upload must leave no image reference")

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "exe upload must not be stored")

	w = createProject(t, r, alice, "With image", "desc", "", "photo.PNG", "fake png")
	require.Equal(t, http.StatusFound, w.Code)

	// reset the destination: a non-zero primary key left over from the
	// previous First would be added to the query conditions by GORM
	project = models.Project{}
	require.NoError(t, db.Where("title = ?", "With image").First(&project).Error)
	assert.Regexp(t, regexp.MustCompile(`^\d+_photo\.PNG$`), project.Image)

	_, err = os.Stat(filepath.Join(cfg.UploadDir, project.Image))
	assert.NoError(t, err)
}

func TestOversizedUploadRejected(t *testing.T) {
	r, db, _ := newTestApp(t)

	alice := register(t, r, "alice", "alice@x.com", "pw1")

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", "Huge"))
	require.NoError(t, mw.WriteField("description", "desc"))
	part, err := mw.CreateFormFile("image", "huge.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 5<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/projects/new", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(alice)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Project{}).Count(&count).Error)
	assert.Zero(t, count, "oversized request must not create a project")
}

func TestDashboardEmpty(t *testing.T) {
	r, _, _ := newTestApp(t)

	dave := register(t, r, "dave", "dave@x.com", "pw1")

	w := get(t, r, "/dashboard", dave)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You have not posted any projects")
	assert.Contains(t, w.Body.String(), "You have not placed any bids")
}

func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	r, _, _ := newTestApp(t)

	for _, path := range []string{"/dashboard", "/projects/new", "/profile/1"} {
		w := get(t, r, path, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestIndexListsTwentyMostRecent(t *testing.T) {
	r, db, _ := newTestApp(t)

	owner := models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)
	for i := 0; i < 25; i++ {
		p := models.Project{
			Title:       fmt.Sprintf("Project %d", i),
			Description: "desc",
			OwnerID:     owner.ID,
		}
		require.NoError(t, db.Create(&p).Error)
	}

	w := get(t, r, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, strings.Count(w.Body.String(), `href="/project/`))
}

func TestProjectNotFound(t *testing.T) {
	r, _, _ := newTestApp(t)

	w := get(t, r, "/project/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaceBidRequiresPrice(t *testing.T) {
	r, db, _ := newTestApp(t)

	alice := register(t, r, "alice", "alice@x.com", "pw1")
	w := createProject(t, r, alice, "Logo design", "desc", "", "", "")
	require.Equal(t, http.StatusFound, w.Code)

	var project models.Project
	require.NoError(t, db.First(&project).Error)

	w = postForm(t, r, fmt.Sprintf("/projects/%d/bid", project.ID), url.Values{"price": {"  "}}, alice)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/project/%d", project.ID), w.Header().Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Bid{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLogoutClearsSession(t *testing.T) {
	r, _, _ := newTestApp(t)

	alice := register(t, r, "alice", "alice@x.com", "pw1")

	w := get(t, r, "/logout", alice)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var cleared *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session" {
			cleared = ck
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}
