package minigql

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPTransportSend(t *testing.T) {
	var gotMethod, gotContentType, gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.Client())
	resp, err := transport.Send(context.Background(), server.URL, &SendOptions{
		Method:  http.MethodPost,
		Headers: http.Header{"Content-Type": []string{"application/json"}},
		Body:    []byte(`{"query":"{ ok }"}`),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotBody != `{"query":"{ ok }"}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestHTTPTransportNilClientDefault(t *testing.T) {
	transport := NewHTTPTransport(nil)
	if transport.client == nil {
		t.Fatal("expected a default http.Client")
	}
	if transport.client.Timeout == 0 {
		t.Error("default client should carry a timeout")
	}
}

func TestClientEndToEndOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if body.Query == "" {
			http.Error(w, "missing query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"echo": body.Variables["msg"]},
		})
	}))
	defer server.Close()

	client, err := New(
		WithEndpoint(server.URL),
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payload, err := client.Query(context.Background(), &Request{
		Query:     "query E($msg:String!){ echo(msg:$msg) }",
		Variables: map[string]any{"msg": "hi"},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	var decoded struct {
		Data struct {
			Echo string `json:"echo"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Data.Echo != "hi" {
		t.Errorf("echo = %q, want hi", decoded.Data.Echo)
	}
}
