package upload

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func uploadFile(t *testing.T, handler http.Handler, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// TestUploadThenDownload exercises both endpoints through the router.
func TestUploadThenDownload(t *testing.T) {
	store, _ := newLocalStore(t)
	router := mux.NewRouter()
	NewHandler(store).RegisterRoutes(router)

	rr := uploadFile(t, router, "会议 notes.txt", []byte("agenda"))
	if rr.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", rr.Code, rr.Body.String())
	}

	var res Result
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("invalid upload response: %v", err)
	}
	if res.Filename != "会议 notes.txt" || res.Size != 6 {
		t.Errorf("upload result = %+v", res)
	}

	u, err := url.Parse(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, u.Path, http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("download status = %d", rr.Code)
	}
	if got, _ := io.ReadAll(rr.Body); string(got) != "agenda" {
		t.Errorf("download body = %q", got)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "inline;") {
		t.Errorf("Content-Disposition = %q, want inline", cd)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, u.Path+"?download=true", http.NoBody))
	if cd := rr.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("forced download Content-Disposition = %q", cd)
	}
}

// TestUploadWithoutFile returns 400.
func TestUploadWithoutFile(t *testing.T) {
	store, _ := newLocalStore(t)
	router := mux.NewRouter()
	NewHandler(store).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("plain"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// TestDownloadInvalidName returns 400 for names outside the scheme.
func TestDownloadInvalidName(t *testing.T) {
	store, _ := newLocalStore(t)
	router := mux.NewRouter()
	NewHandler(store).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/whatever.txt", http.NoBody))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
