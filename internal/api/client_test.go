package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pixil98/go-testutil"
)

func gqlServer(t *testing.T, response string, inspect func(r *http.Request, req gqlRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %s", err)
		}
		if inspect != nil {
			inspect(r, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
}

func TestLogin(t *testing.T) {
	tests := map[string]struct {
		response string
		expErr   bool
		expAuth  bool
		expKey   string
		expToken string
	}{
		"success": {
			response: `{"data":{"login":{"key":"p-1","token":"tok"}}}`,
			expKey:   "p-1",
			expToken: "tok",
		},
		"rejected credentials": {
			response: `{"errors":[{"message":"bad credentials"}]}`,
			expErr:   true,
			expAuth:  true,
		},
		"empty token": {
			response: `{"data":{"login":{"key":"p-1","token":""}}}`,
			expErr:   true,
			expAuth:  true,
		},
		"malformed data": {
			response: `{"data":{"login":42}}`,
			expErr:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := gqlServer(t, tt.response, nil)
			defer srv.Close()

			c := NewClient(srv.URL, nil)
			auth, err := c.Login(context.Background(), "ana", "pw")

			if tt.expErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				testutil.AssertEqual(t, "auth error", IsAuthError(err), tt.expAuth)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			testutil.AssertEqual(t, "key", auth.Key, tt.expKey)
			testutil.AssertEqual(t, "token", auth.Token, tt.expToken)
		})
	}
}

func TestLanguage(t *testing.T) {
	response := `{"data":{"language":{"reply":{"rendered":null,"model":"{\"py/object\":\"Success\",\"message\":\"ok\"}"},"entities":[{"key":"e-1","serialized":"{}"}]}}}`

	var gotVars map[string]any
	srv := gqlServer(t, response, func(_ *http.Request, req gqlRequest) {
		gotVars = req.Variables
	})
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	evaluation, err := c.Language(context.Background(), "look", "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	testutil.AssertEqual(t, "text var", gotVars["text"], any("look"))
	testutil.AssertEqual(t, "evaluator var", gotVars["evaluator"], any("p-1"))
	testutil.AssertEqual(t, "entities", len(evaluation.Entities), 1)

	_, env, err := evaluation.Reply.Decode()
	if err != nil {
		t.Fatalf("decoding reply: %s", err)
	}
	testutil.AssertEqual(t, "tag", env.Tag, "Success")
	testutil.AssertEqual(t, "message", env.String("message"), "ok")
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth string
	srv := gqlServer(t, `{"data":{"areas":[]}}`, func(r *http.Request, _ gqlRequest) {
		gotAuth = r.Header.Get("Authorization")
	})
	defer srv.Close()

	c := NewClient(srv.URL, func() map[string]string {
		return map[string]string{"Authorization": "Bearer tok"}
	})
	if _, err := c.Areas(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	testutil.AssertEqual(t, "auth header", gotAuth, "Bearer tok")
}

func TestUpdateEntity(t *testing.T) {
	response := `{"data":{"update":{"affected":[{"key":"e-1","serialized":"{}"},{"key":"e-2","serialized":"{}"}]}}}`
	srv := gqlServer(t, response, nil)
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	affected, err := c.UpdateEntity(context.Background(), "e-1", "{}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	testutil.AssertEqual(t, "affected", len(affected), 2)
	testutil.AssertEqual(t, "first key", affected[0].Key, "e-1")
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.People(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
}
