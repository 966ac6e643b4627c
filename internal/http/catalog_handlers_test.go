package http

import (
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCatalogEntryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	session := env.registerUser(t, "admin@example.com", "secret1")
	authed := env.bearer(session.AccessToken)

	rec := env.do(t, http.MethodPost, "/api/catalog/categories", gin.H{
		"name":        "web",
		"description": "web servers",
	}, authed)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[CatalogEntryResponse](t, rec)
	if created.ID == 0 || created.Name != "web" {
		t.Fatalf("unexpected entry: %+v", created)
	}

	path := fmt.Sprintf("/api/catalog/categories/%d", created.ID)

	rec = env.do(t, http.MethodGet, path, nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPut, path, gin.H{"name": "frontend", "description": "edge"}, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[CatalogEntryResponse](t, rec)
	if updated.Name != "frontend" || updated.Description != "edge" {
		t.Fatalf("unexpected updated entry: %+v", updated)
	}

	rec = env.do(t, http.MethodDelete, path, nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodGet, path, nil, authed)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete returned %d: %s", rec.Code, rec.Body.String())
	}
	if envelope := decodeBody[errorEnvelope](t, rec); envelope.Title != "NOT_FOUND" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	rec = env.do(t, http.MethodPost, path+"/restore", nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodGet, path, nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("get after restore returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCatalogListPagination(t *testing.T) {
	env := newTestEnv(t)
	session := env.registerUser(t, "lister@example.com", "secret1")
	authed := env.bearer(session.AccessToken)

	for i := 1; i <= 5; i++ {
		rec := env.do(t, http.MethodPost, "/api/catalog/categories", gin.H{
			"name": fmt.Sprintf("cat-%d", i),
		}, authed)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d returned %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	rec := env.do(t, http.MethodGet, "/api/catalog/categories?page=2&perPage=2", nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d: %s", rec.Code, rec.Body.String())
	}

	type listResponse struct {
		Items   []CatalogEntryResponse `json:"items"`
		Page    int                    `json:"page"`
		PerPage int                    `json:"per_page"`
		Total   int64                  `json:"total"`
	}
	list := decodeBody[listResponse](t, rec)
	if list.Total != 5 || list.Page != 2 || list.PerPage != 2 {
		t.Fatalf("unexpected paging: %+v", list)
	}
	if len(list.Items) != 2 || list.Items[0].Name != "cat-3" || list.Items[1].Name != "cat-4" {
		t.Fatalf("unexpected page contents: %+v", list.Items)
	}
}

func TestCatalogBadRequests(t *testing.T) {
	env := newTestEnv(t)
	session := env.registerUser(t, "bad@example.com", "secret1")
	authed := env.bearer(session.AccessToken)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{name: "missing name", method: http.MethodPost, path: "/api/catalog/categories", body: gin.H{"description": "x"}},
		{name: "non-numeric id", method: http.MethodGet, path: "/api/catalog/categories/abc"},
		{name: "zero id", method: http.MethodGet, path: "/api/catalog/categories/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body, authed)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestWhitespaceNameIsValidationError(t *testing.T) {
	// the binding tag only rejects the empty string; a whitespace-only
	// name reaches the service and must still come back as a 400
	env := newTestEnv(t)
	session := env.registerUser(t, "blank@example.com", "secret1")
	authed := env.bearer(session.AccessToken)

	for name, path := range map[string]string{
		"category": "/api/catalog/categories",
		"server":   "/api/catalog/servers",
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, path, gin.H{"name": "   "}, authed)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("returned %d: %s", rec.Code, rec.Body.String())
			}
			envelope := decodeBody[errorEnvelope](t, rec)
			if envelope.Title != "VALIDATION_ERROR" || envelope.StatusCode != http.StatusBadRequest {
				t.Fatalf("unexpected envelope: %+v", envelope)
			}
		})
	}
}

func TestServerLifecycle(t *testing.T) {
	env := newTestEnv(t)
	session := env.registerUser(t, "ops@example.com", "secret1")
	authed := env.bearer(session.AccessToken)

	rec := env.do(t, http.MethodPost, "/api/catalog/servers", gin.H{
		"name":        "db-01",
		"ip_address":  "10.0.0.5",
		"category_id": 1,
		"os_id":       2,
		"location_id": 3,
		"tag_ids":     []int64{4, 2},
		"notes":       "primary",
	}, authed)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[ServerResponse](t, rec)
	if created.IPAddress != "10.0.0.5" {
		t.Fatalf("unexpected server: %+v", created)
	}

	path := fmt.Sprintf("/api/catalog/servers/%d", created.ID)
	rec = env.do(t, http.MethodGet, path, nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("get returned %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[ServerResponse](t, rec)
	if !reflect.DeepEqual(got.TagIDs, []int64{2, 4}) {
		t.Fatalf("tags = %v, want [2 4]", got.TagIDs)
	}

	rec = env.do(t, http.MethodDelete, path, nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodGet, path, nil, authed)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete returned %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, path+"/restore", nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore returned %d: %s", rec.Code, rec.Body.String())
	}
}
