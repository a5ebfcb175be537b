package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"zplrender"
	"zplrender/config"
)

const testLabel = "^XA\n^FO10,10^A0,20^FD<ID>^FS\n^FO10,40^BCN,50,Y,N,N^FD<ID>^FS\n^XZ"

// newTestApp - приложение с временным каталогом меток и маленьким холстом
func newTestApp(t *testing.T, compression string) *app {
	t.Helper()
	cfg := config.Default()
	cfg.LabelsDir = t.TempDir()
	cfg.Canvas = config.Canvas{Width: 300, Height: 200}
	cfg.Substitutions = map[string]string{"<ID>": "000001"}
	cfg.Server.Compression = compression

	a, err := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	return a
}

func postRender(t *testing.T, a *app, req renderRequest, acceptEncoding string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	r := httptest.NewRequest(http.MethodPost, "/render", bytes.NewReader(body))
	if acceptEncoding != "" {
		r.Header.Set("Accept-Encoding", acceptEncoding)
	}
	w := httptest.NewRecorder()
	a.handler().ServeHTTP(w, r)
	return w
}

func decodeInstructions(t *testing.T, body []byte) ([]zplrender.DrawInstruction, string) {
	t.Helper()
	var resp renderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("bad json: %v\n%s", err, body)
	}
	list, err := zplrender.UnmarshalInstructions(resp.Instructions)
	if err != nil {
		t.Fatalf("instructions: %v", err)
	}
	return list, resp.Error
}

// TestHTTPRender_JSON - инструкции без растеризации, подстановки из конфига
func TestHTTPRender_JSON(t *testing.T) {
	a := newTestApp(t, "none")
	w := postRender(t, a, renderRequest{Label: testLabel, Format: "json"}, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	list, msg := decodeInstructions(t, w.Body.Bytes())
	if msg != "" {
		t.Errorf("unexpected error field: %s", msg)
	}
	if len(list) != 2 {
		t.Fatalf("got %d instructions", len(list))
	}
	if v := list[0].(zplrender.Text).Value; v != "000001" {
		t.Errorf("text = %q", v)
	}
}

// TestHTTPRender_DataOverridesConfig - данные запроса важнее конфига
func TestHTTPRender_DataOverridesConfig(t *testing.T) {
	a := newTestApp(t, "none")
	req := renderRequest{Label: testLabel, Format: "json", Data: map[string]string{"<ID>": "777"}}
	w := postRender(t, a, req, "")

	list, _ := decodeInstructions(t, w.Body.Bytes())
	if v := list[1].(zplrender.Barcode).Value; v != "777" {
		t.Errorf("barcode value = %q", v)
	}
}

// TestHTTPRender_PNG - растровый ответ
func TestHTTPRender_PNG(t *testing.T) {
	a := newTestApp(t, "none")
	w := postRender(t, a, renderRequest{Label: testLabel}, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
		t.Errorf("png bounds = %v", b)
	}
}

// TestHTTPRender_Failure - частичный результат и 422
func TestHTTPRender_Failure(t *testing.T) {
	a := newTestApp(t, "none")
	label := "^FO1,1^A0,10^FDok^FS\n^FO2,2^GBx,1^FS\n^FO3,3^A0,10^FDlost^FS"
	w := postRender(t, a, renderRequest{Label: label}, "")

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", w.Code)
	}
	list, msg := decodeInstructions(t, w.Body.Bytes())
	if len(list) != 1 {
		t.Errorf("partial output = %d instructions", len(list))
	}
	if !strings.Contains(msg, zplrender.ErrMalformedBox.Error()) {
		t.Errorf("error = %q", msg)
	}
}

// TestHTTPRender_ByName - метка из labels_dir, выход за каталог не находит файл
func TestHTTPRender_ByName(t *testing.T) {
	a := newTestApp(t, "none")
	if err := os.WriteFile(filepath.Join(a.cfg.LabelsDir, "ship.zpl"), []byte(testLabel), 0o644); err != nil {
		t.Fatal(err)
	}

	w := postRender(t, a, renderRequest{Name: "ship.zpl", Format: "json"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	w = postRender(t, a, renderRequest{Name: "../../../../etc/passwd", Format: "json"}, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("escape attempt status = %d, want 404", w.Code)
	}

	w = postRender(t, a, renderRequest{Format: "json"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty request status = %d, want 400", w.Code)
	}
}

// TestHTTPRender_Compression - zstd по умолчанию, gzip если клиент знает только его
func TestHTTPRender_Compression(t *testing.T) {
	a := newTestApp(t, "zstd")

	w := postRender(t, a, renderRequest{Label: testLabel, Format: "json"}, "gzip, zstd")
	if enc := w.Header().Get("Content-Encoding"); enc != "zstd" {
		t.Fatalf("encoding = %q, want zstd", enc)
	}
	zr, err := zstd.NewReader(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		t.Fatalf("zstd body: %v", err)
	}
	if list, _ := decodeInstructions(t, body); len(list) != 2 {
		t.Errorf("zstd: %d instructions", len(list))
	}

	w = postRender(t, a, renderRequest{Label: testLabel, Format: "json"}, "gzip")
	if enc := w.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("encoding = %q, want gzip", enc)
	}
	gr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, err = io.ReadAll(gr)
	if err != nil {
		t.Fatalf("gzip body: %v", err)
	}
	if list, _ := decodeInstructions(t, body); len(list) != 2 {
		t.Errorf("gzip: %d instructions", len(list))
	}

	w = postRender(t, a, renderRequest{Label: testLabel, Format: "json"}, "br")
	if enc := w.Header().Get("Content-Encoding"); enc != "" {
		t.Errorf("unsupported encoding answered with %q", enc)
	}
}

// TestHTTPRender_BodyLimit - слишком большой запрос отклоняется
func TestHTTPRender_BodyLimit(t *testing.T) {
	a := newTestApp(t, "none")
	huge := strings.Repeat("^FO1,1^A0,10^FDx^FS\n", maxRequestBytes/20+1)
	w := postRender(t, a, renderRequest{Label: huge, Format: "json"}, "")
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}

	r := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader("{"))
	w = httptest.NewRecorder()
	a.handler().ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("broken json status = %d, want 400", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t, "none")
	w := httptest.NewRecorder()
	a.handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", w.Code, w.Body.String())
	}
}

// TestRenderFile - CLI-путь: частичный результат записан, ошибка возвращена
func TestRenderFile(t *testing.T) {
	a := newTestApp(t, "none")
	dir := a.cfg.LabelsDir
	if err := os.WriteFile(filepath.Join(dir, "bad.zpl"), []byte("^FO1,1^A0,10^FDok^FS\n^FS"), 0o644); err != nil {
		t.Fatal(err)
	}
	data := filepath.Join(dir, "data.json")
	if err := os.WriteFile(data, []byte(`{"<ID>":"42"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "bad.json")

	err := a.renderFile("bad.zpl", data, out, "json")
	if err == nil {
		t.Fatal("expected the pass error")
	}
	raw, readErr := os.ReadFile(out)
	if readErr != nil {
		t.Fatalf("partial output not written: %v", readErr)
	}
	list, decErr := zplrender.UnmarshalInstructions(raw)
	if decErr != nil || len(list) != 1 {
		t.Errorf("partial output = %v, %v", list, decErr)
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		accept, preferred, want string
	}{
		{"gzip, zstd", "gzip", "gzip"},
		{"zstd", "gzip", "zstd"},
		{"gzip;q=0, zstd", "gzip", "zstd"},
		{"", "zstd", ""},
		{"gzip", "none", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept-Encoding", tt.accept)
		got := ""
		if m := negotiate(r, tt.preferred); m != nil {
			got = m.Name()
		}
		if got != tt.want {
			t.Errorf("negotiate(%q, %q) = %q, want %q", tt.accept, tt.preferred, got, tt.want)
		}
	}
}
