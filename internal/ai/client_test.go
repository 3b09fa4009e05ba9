package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"builder/internal/ai"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", "const a = 1;", "const a = 1;"},
		{"plain fence", "```\nconst a = 1;\n```", "const a = 1;"},
		{"language tag", "```jsx\n<App />\n```", "<App />"},
		{"missing closing fence", "```js\nlet x;", "let x;"},
		{"surrounding whitespace", "  ```\nbody\n```  ", "body"},
		{"multiline body", "```tsx\nline1\nline2\n```", "line1\nline2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ai.StripCodeFences(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateCode(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{
			"code": "```jsx\nexport default function App() {}\n```",
		})
	}))
	defer srv.Close()

	c := ai.NewClient(srv.URL, "sk-test")
	code, err := c.GenerateCode(context.Background(), ai.GenerateRequest{
		Prompt:    "landing page",
		Framework: "react",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gotPath != "/generate" || gotAuth != "Bearer sk-test" {
		t.Errorf("request shape: path=%q auth=%q", gotPath, gotAuth)
	}
	if gotBody["prompt"] != "landing page" {
		t.Errorf("body: %v", gotBody)
	}
	if code != "export default function App() {}" {
		t.Errorf("fences must be stripped, got %q", code)
	}
}

func TestGenerateCode_RequiresPrompt(t *testing.T) {
	c := ai.NewClient("http://unused", "")
	if _, err := c.GenerateCode(context.Background(), ai.GenerateRequest{}); err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestFixCode_BareTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("```\nfixed()\n```"))
	}))
	defer srv.Close()

	code, err := ai.NewClient(srv.URL, "").FixCode(context.Background(), "broken()", "TypeError")
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if code != "fixed()" {
		t.Errorf("got %q", code)
	}
}

func TestErrorCarriesServiceMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	_, err := ai.NewClient(srv.URL, "").FixCode(context.Background(), "x", "y")
	if err == nil || !strings.Contains(err.Error(), "rate limited") || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status and message, got %v", err)
	}
}
