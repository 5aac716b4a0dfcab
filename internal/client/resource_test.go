package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/simp-lee/amcham/internal/domain"
)

func TestQuery(t *testing.T) {
	filters := map[string]string{FilterSector: "sectorId", FilterCountry: "country"}
	tests := []struct {
		name string
		c    domain.Criteria
		want url.Values
	}{
		{
			name: "only paging",
			c:    domain.Criteria{},
			want: url.Values{"page": {"0"}, "size": {"10"}},
		},
		{
			name: "term and filter",
			c:    domain.Criteria{Term: "  sonatel ", Filter: map[string]string{FilterSector: "3"}, Page: 2, Size: 20},
			want: url.Values{"page": {"2"}, "size": {"20"}, "name": {"sonatel"}, "sectorId": {"3"}},
		},
		{
			name: "sentinel and blanks omitted",
			c:    domain.Criteria{Term: "   ", Filter: map[string]string{FilterSector: "all", FilterCountry: ""}},
			want: url.Values{"page": {"0"}, "size": {"10"}},
		},
		{
			name: "unmapped filter ignored",
			c:    domain.Criteria{Filter: map[string]string{"color": "blue"}, Page: -1},
			want: url.Values{"page": {"0"}, "size": {"10"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Query(tt.c, "name", filters)
			if got.Encode() != tt.want.Encode() {
				t.Errorf("Query() = %s, want %s", got.Encode(), tt.want.Encode())
			}
		})
	}
}

func TestResource_List(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		io.WriteString(w, `{"content":[{"id":1,"name":"Sonatel"}],"totalElements":11,"totalPages":2,"pageNumber":1,"pageSize":10}`)
	}))
	defer srv.Close()

	dir := NewDirectory(newTestClient(t, srv, ""))
	page, err := dir.Companies.List(context.Background(), domain.Criteria{Term: "son", Page: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if gotPath != "/api/companies/search" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "name=son") || !strings.Contains(gotQuery, "page=1") {
		t.Errorf("query = %q", gotQuery)
	}
	if page.TotalElements != 11 || page.TotalPages != 2 || len(page.Content) != 1 || page.Content[0].Name != "Sonatel" {
		t.Errorf("page = %+v", page)
	}
}

func TestResource_AllAcceptsArrayOrEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"id":1,"nameFr":"Énergie"},{"id":2,"nameFr":"Mines"}]`, 2},
		{"envelope", `{"content":[{"id":1}],"totalElements":1}`, 1},
		{"null", `null`, 0},
		{"empty", ``, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			dir := NewDirectory(newTestClient(t, srv, ""))
			got, err := dir.Sectors.All(context.Background())
			if err != nil {
				t.Fatalf("All() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestResource_CRUD(t *testing.T) {
	type seen struct{ method, path string }
	var calls []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, seen{r.Method, r.URL.Path})
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			io.WriteString(w, `{"id":7,"name":"Acme"}`)
		default:
			var p domain.Partner
			json.NewDecoder(r.Body).Decode(&p)
			p.ID = 7
			json.NewEncoder(w).Encode(p)
		}
	}))
	defer srv.Close()

	dir := NewDirectory(newTestClient(t, srv, "tok"))
	ctx := context.Background()

	created, err := dir.Partners.Create(ctx, domain.Partner{Name: "Acme"})
	if err != nil || created.ID != 7 || created.Name != "Acme" {
		t.Fatalf("Create() = %+v, %v", created, err)
	}
	if _, err := dir.Partners.Update(ctx, 7, domain.Partner{Name: "Acme 2"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := dir.Partners.Get(ctx, 7)
	if err != nil || got.Name != "Acme" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}
	if err := dir.Partners.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []seen{
		{http.MethodPost, "/api/partners"},
		{http.MethodPut, "/api/partners/7"},
		{http.MethodGet, "/api/partners/7"},
		{http.MethodDelete, "/api/partners/7"},
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call[%d] = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestResource_CreateWithFilesIsMultipart(t *testing.T) {
	var fields map[string][]string
	var fileName, fileBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			return
		}
		fields = r.MultipartForm.Value
		if fhs := r.MultipartForm.File[FieldLogoFile]; len(fhs) == 1 {
			fileName = fhs[0].Filename
			f, _ := fhs[0].Open()
			b, _ := io.ReadAll(f)
			f.Close()
			fileBody = string(b)
		}
		io.WriteString(w, `{"id":3}`)
	}))
	defer srv.Close()

	dir := NewDirectory(newTestClient(t, srv, "tok"))
	created, err := dir.Companies.Create(context.Background(),
		domain.Company{Name: "Acme", SectorID: 4},
		Upload{Field: FieldLogoFile, Filename: "logo.png", ContentType: "image/png", Data: []byte("PNG")},
	)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != 3 {
		t.Errorf("ID = %d, want 3", created.ID)
	}
	if got := fields["name"]; len(got) != 1 || got[0] != "Acme" {
		t.Errorf("name field = %v", got)
	}
	if got := fields["sectorId"]; len(got) != 1 || got[0] != "4" {
		t.Errorf("sectorId field = %v, want [4]", got)
	}
	// Absent optional fields are sent as empty strings.
	if got, ok := fields["phone"]; !ok || got[0] != "" {
		t.Errorf("phone field = %v, present %v", got, ok)
	}
	if fileName != "logo.png" || fileBody != "PNG" {
		t.Errorf("file = %q %q", fileName, fileBody)
	}
}

func TestResource_ConflictMessagePerResource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	dir := NewDirectory(newTestClient(t, srv, "tok"))
	_, err := dir.Sectors.Create(context.Background(), domain.Sector{NameFr: "Mines"})
	if !domain.IsConflict(err) {
		t.Fatalf("error = %v, want conflict", err)
	}
	if !strings.HasPrefix(err.(*domain.APIError).Message, "conflict") {
		t.Errorf("Message = %q", err.(*domain.APIError).Message)
	}
}

func TestCompanyClient_SubResources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/companies/5/schedules":
			io.WriteString(w, `[{"id":1,"dayOfWeek":"MONDAY","openTime":"08:00","closeTime":"17:00"}]`)
		case "/api/companies/contacts/9/circular-stats":
			io.WriteString(w, `{"contactId":9,"sent":10,"opened":4}`)
		case "/api/events/upcoming":
			io.WriteString(w, `[{"id":1,"titleFr":"Gala"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := NewDirectory(newTestClient(t, srv, "tok"))
	ctx := context.Background()

	schedules, err := dir.Companies.Schedules(ctx, 5)
	if err != nil || len(schedules) != 1 || schedules[0].DayOfWeek != "MONDAY" {
		t.Errorf("Schedules() = %+v, %v", schedules, err)
	}
	stats, err := dir.Companies.CircularStats(ctx, 9)
	if err != nil || stats.Sent != 10 || stats.Opened != 4 {
		t.Errorf("CircularStats() = %+v, %v", stats, err)
	}
	events, err := dir.Announcements.Upcoming(ctx)
	if err != nil || len(events) != 1 || events[0].TitleFr != "Gala" {
		t.Errorf("Upcoming() = %+v, %v", events, err)
	}
}

func TestAuthAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/signin":
			io.WriteString(w, `{"accessToken":"a","refreshToken":"r","user":{"id":1,"email":"x@y.z"}}`)
		case "/api/auth/refresh":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["refreshToken"] != "r" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			io.WriteString(w, `{"accessToken":"a2","refreshToken":"r2"}`)
		case "/api/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		case "/api/v1/user/me":
			io.WriteString(w, `{"id":1,"email":"x@y.z","roles":["ROLE_ADMIN"]}`)
		}
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, PublicPaths: []string{"POST /api/auth/signin", "POST /api/auth/refresh"}, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.SetTokenSource(staticTokens{token: "a"})
	api := NewAuthAPI(c)
	ctx := context.Background()

	tokens, err := api.SignIn(ctx, domain.Credentials{Email: "x@y.z", Password: "pw"})
	if err != nil || tokens.AccessToken != "a" || tokens.User == nil || tokens.User.Email != "x@y.z" {
		t.Fatalf("SignIn() = %+v, %v", tokens, err)
	}
	refreshed, err := api.Refresh(ctx, "r")
	if err != nil || refreshed.AccessToken != "a2" {
		t.Fatalf("Refresh() = %+v, %v", refreshed, err)
	}
	if err := api.Logout(ctx, "r2"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	me, err := api.Me(ctx)
	if err != nil || !me.HasRole(domain.RoleAdmin) {
		t.Fatalf("Me() = %+v, %v", me, err)
	}
}
