package requests

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write requests file: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "requests.yaml", `
requests:
  - name: login
    verb: post
    path: /login/code2
    body:
      code: abc
      nested:
        ok: true
    geo:
      lat: 47.6
      long: -122.3
  - name: me
    path: /me
    auth_header: "Bearer t"
`)

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(reg.All()))
	}

	login, ok := reg.ByName("login")
	if !ok {
		t.Fatalf("login not found")
	}
	req := login.ToRequest()
	if req.Verb != "POST" || req.Path != "/login/code2" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.AuthHeader != nil {
		t.Fatalf("auth header should be absent")
	}
	if req.Geo == nil || req.Geo.Lat != 47.6 || req.Geo.Long != -122.3 {
		t.Fatalf("geo not decoded: %+v", req.Geo)
	}
	body, err := json.Marshal(req.Body)
	if err != nil {
		t.Fatalf("yaml body must be JSON-encodable: %v", err)
	}
	if string(body) != `{"code":"abc","nested":{"ok":true}}` {
		t.Fatalf("unexpected body %s", body)
	}

	me, _ := reg.ByName("me")
	meReq := me.ToRequest()
	if meReq.Verb != "GET" {
		t.Fatalf("expected default GET, got %s", meReq.Verb)
	}
	if meReq.AuthHeader == nil || *meReq.AuthHeader != "Bearer t" {
		t.Fatalf("auth header not carried")
	}
	if meReq.Body != nil {
		t.Fatalf("expected nil body, got %#v", meReq.Body)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "requests.json", `{"requests":[{"name":"ping","path":"/ping"}]}`)
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := reg.ByName("ping"); !ok {
		t.Fatalf("ping not found")
	}
}

func TestLoadRejectsDuplicatesAndBadPaths(t *testing.T) {
	dup := writeFile(t, "dup.yaml", `
requests:
  - name: a
    path: /a
  - name: a
    path: /b
`)
	if _, err := Load(dup); err == nil {
		t.Fatalf("expected duplicate name error")
	}

	relative := writeFile(t, "rel.yaml", `
requests:
  - name: a
    path: a
`)
	if _, err := Load(relative); err == nil {
		t.Fatalf("expected error for path without leading slash")
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	if _, err := Load(writeFile(t, "empty.yaml", "requests: []\n")); err == nil {
		t.Fatalf("expected error for empty requests list")
	}
	if _, err := Load(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
