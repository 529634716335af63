package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/session"
)

func newKeeper(t *testing.T, access, refresh string) *session.Keeper {
	t.Helper()
	ctx := context.Background()
	keeper, err := session.Open(ctx, session.NewMemoryStore(), session.DefaultProfile)
	require.NoError(t, err)
	if access != "" || refresh != "" {
		require.NoError(t, keeper.SaveLogin(ctx, access, refresh, json.RawMessage(`{"id":1,"name":"Ada"}`)))
	}
	return keeper
}

func newClient(t *testing.T, server *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(server.URL, append([]Option{WithHTTPClient(server.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	require.Error(t, err)

	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestLogin_StoresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["username_or_email"])
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"tokens":{"access":"a1","refresh":"r1"},"user":{"id":3,"name":"Ada"}}}`)
	}))
	defer server.Close()

	keeper := newKeeper(t, "", "")
	c := newClient(t, server, WithCredentials(keeper))

	result, err := c.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	user, err := result.DecodeUser()
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "a1", keeper.AccessToken())
	assert.Equal(t, "r1", keeper.RefreshToken())
	assert.True(t, keeper.Current().Authenticated())
}

func TestRequest_RefreshesOnceOn401(t *testing.T) {
	var (
		mu        sync.Mutex
		refreshes int
		attempts  []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case refreshPath:
			refreshes++
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "r1", body["refresh"])
			writeJSON(w, http.StatusOK, `{"access":"fresh"}`)
		case "/api/courses/instructor/courses/":
			attempts = append(attempts, r.Header.Get("Authorization"))
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeJSON(w, http.StatusUnauthorized, `{"detail":"Given token not valid"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"courses":[{"id":1,"title":"Go","description":"Basics"}]}}`)
		}
	}))
	defer server.Close()

	keeper := newKeeper(t, "stale", "r1")
	c := newClient(t, server, WithCredentials(keeper))

	courses, err := c.Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Go", courses[0].Title)
	assert.Equal(t, 1, refreshes)
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, attempts)
	assert.Equal(t, "fresh", keeper.AccessToken())
}

func TestRequest_FailedRefreshClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Token is blacklisted"}`)
			return
		}
		writeJSON(w, http.StatusUnauthorized, `{"detail":"expired"}`)
	}))
	defer server.Close()

	keeper := newKeeper(t, "stale", "r1")
	c := newClient(t, server, WithCredentials(keeper))

	_, err := c.Courses(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, keeper.AccessToken())
	assert.Empty(t, keeper.RefreshToken())
}

func TestRequest_SecondUnauthorizedIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			writeJSON(w, http.StatusOK, `{"access":"fresh"}`)
			return
		}
		calls++
		writeJSON(w, http.StatusUnauthorized, `{"detail":"nope"}`)
	}))
	defer server.Close()

	c := newClient(t, server, WithCredentials(newKeeper(t, "stale", "r1")))
	_, err := c.Courses(context.Background())
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, 2, calls)
}

func TestRequest_RefreshesExpiringJWTAhead(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	expiring, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Second)),
	}).SignedString([]byte("test"))
	require.NoError(t, err)

	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			writeJSON(w, http.StatusOK, `{"access":"fresh"}`)
			return
		}
		seen = append(seen, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"categories":[{"id":4,"name":"Design"}]}}`)
	}))
	defer server.Close()

	c := newClient(t, server, WithCredentials(newKeeper(t, expiring, "r1")), WithClock(func() time.Time { return now }))
	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer fresh"}, seen)
	assert.Equal(t, []model.Option{{Value: "4", Label: "Design"}}, CategoryOptions(categories))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}).SignedString([]byte("k"))
	require.NoError(t, err)

	got, err := TokenExpiry(token)
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))

	_, err = TokenExpiry("opaque")
	assert.Error(t, err)
}

func TestAPIError_Payloads(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   map[string][]string
	}{
		{
			name:   "flat field errors",
			status: http.StatusBadRequest,
			body:   `{"email":["Enter a valid email address."],"non_field_errors":["Contact already exists"]}`,
			want:   map[string][]string{"email": {"Enter a valid email address."}, NonFieldKey: {"Contact already exists"}},
		},
		{
			name:   "envelope",
			status: http.StatusBadRequest,
			body:   `{"success":false,"message":"Validation failed","errors":{"username":"taken"}}`,
			want:   map[string][]string{"username": {"taken"}, "message": {"Validation failed"}},
		},
		{
			name:   "message only",
			status: http.StatusInternalServerError,
			body:   `oops`,
			want:   map[string][]string{"message": {"oops"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := decodeAPIError(tc.status, []byte(tc.body))
			assert.Equal(t, tc.want, err.FieldErrors())
			assert.Contains(t, err.Error(), "client:")
		})
	}
}

func TestContactsSource_SendsQueryAndDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/network/contacts/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "12", q.Get("page_size"))
		assert.Equal(t, "alphabetical", q.Get("sort"))
		assert.Equal(t, "manual", q.Get("filter_type"))
		assert.False(t, q.Has("search"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{
			"contacts":[{"id":9,"name":"","email":"bo@example.com","is_platform_user":false}],
			"stats":{"allContacts":30,"platformConnections":10,"manualContacts":20},
			"pagination":{"current_page":2,"total_pages":3,"has_next":true,"has_previous":true,"total_items":30}}}`)
	}))
	defer server.Close()

	source := ContactsSource{Client: newClient(t, server, WithCredentials(newKeeper(t, "a", "r")))}
	query := listing.Query{Page: 2, PageSize: 12, Sort: listing.SortAlphabetical, FilterType: listing.FilterManual}
	resp, err := source.Fetch(context.Background(), query.Request())
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "bo@example.com", resp.Items[0].DisplayName())
	assert.Equal(t, 20, resp.Stats[StatManualContacts])
	assert.Equal(t, listing.Pagination{CurrentPage: 2, TotalPages: 3, HasNext: true, HasPrevious: true, TotalItems: 30}, resp.Pagination)
}

func TestEnvelopeFailureIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"Failed to load courses"}`)
	}))
	defer server.Close()

	_, err := newClient(t, server).Courses(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to load courses", apiErr.Message)
}

func TestCreateCourse_SendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Go 101", r.FormValue("title"))
		assert.Equal(t, "4", r.FormValue("category"))
		_, hasMax := r.MultipartForm.Value["max_enrollments"]
		assert.False(t, hasMax)
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "cover.png", header.Filename)
		assert.Equal(t, "PNG", string(data))
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"course":{"id":11,"title":"Go 101","description":"d"}}}`)
	}))
	defer server.Close()

	values := model.Values{
		"title":           "Go 101",
		"description":     "d",
		"category":        "4",
		"max_enrollments": "0",
		"image": &model.File{Name: "cover.png", ContentType: "image/png", Size: 3, Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("PNG")), nil
		}},
	}
	course, err := newClient(t, server, WithCredentials(newKeeper(t, "a", "r"))).CreateCourse(context.Background(), values)
	require.NoError(t, err)
	assert.Equal(t, 11, course.ID)
}

func TestCreateUnit_AcceptsBareResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/courses/5/units/create/", r.URL.Path)
		writeJSON(w, http.StatusCreated, `{"id":2,"title":"Intro","order":1}`)
	}))
	defer server.Close()

	unit, err := newClient(t, server).CreateUnit(context.Background(), 5, UnitInput{Title: "Intro", Order: 1})
	require.NoError(t, err)
	assert.Equal(t, Unit{ID: 2, Title: "Intro", Order: 1}, unit)
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{"message":"upstream"}`)
	}))
	defer server.Close()

	keeper := newKeeper(t, "a", "r")
	err := newClient(t, server, WithCredentials(keeper), WithRefreshSkew(0)).Logout(context.Background())
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	assert.Empty(t, keeper.AccessToken())
}

func TestContact_Display(t *testing.T) {
	platform := Contact{Name: "local", IsPlatformUser: true, PlatformUser: &User{Name: "Grace Hopper", Email: "g@example.com"}, ConnectionStatus: ConnectionPendingSent}
	assert.Equal(t, "Grace Hopper", platform.DisplayName())
	assert.Equal(t, "g@example.com", platform.DisplayEmail())
	assert.Equal(t, "GH", platform.Initials())
	assert.Equal(t, "Request Sent", platform.StatusLabel())

	manual := Contact{PhoneNumber: "+123"}
	assert.Equal(t, "+123", manual.DisplayName())
	assert.Equal(t, "", manual.StatusLabel())
	assert.Equal(t, "UC", Contact{}.Initials())
}

func TestFilterCourses(t *testing.T) {
	courses := []Course{
		{Title: "Go Basics", Description: "Start here"},
		{Title: "Rust", Description: "Systems"},
		{Title: "Design", Description: "go deeper into layout"},
	}
	got := FilterCourses(courses, "GO")
	require.Len(t, got, 2)
	assert.Equal(t, "Go Basics", got[0].Title)
	assert.Equal(t, "Design", got[1].Title)
	assert.Len(t, FilterCourses(courses, ""), 3)
	assert.Empty(t, FilterCourses(courses, " go"))
}
