package nav_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/interviewhub/gateway/internal/nav"
)

func TestMenuEndpointAnonymous(t *testing.T) {
	handler := nav.NewHandler(nil, nav.NewResolver())
	router := chi.NewRouter()
	router.Route("/nav", handler.MountRoutes)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/nav/menu", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		Code int `json:"code"`
		Data struct {
			View    string `json:"view"`
			Entries []struct {
				Path string `json:"path"`
			} `json:"entries"`
			Buttons []string `json:"buttons"`
		} `json:"data"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != 200 {
		t.Fatalf("expected envelope code 200, got %d", body.Code)
	}
	if body.Data.View != "public" {
		t.Fatalf("expected public view, got %s", body.Data.View)
	}
	if len(body.Data.Entries) != 4 {
		t.Fatalf("anonymous menu should carry the 4 public entries, got %d", len(body.Data.Entries))
	}
	if len(body.Data.Buttons) != 0 {
		t.Fatalf("anonymous menu should carry no buttons, got %v", body.Data.Buttons)
	}
}
