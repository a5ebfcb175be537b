package main

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressionMethod - response body encoder.
type CompressionMethod interface {
	Name() string // Content-Encoding token
	Writer(w io.Writer) (io.WriteCloser, error)
}

type zstdMethod struct{}

func (zstdMethod) Name() string { return "zstd" }

func (zstdMethod) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

type gzipMethod struct{}

func (gzipMethod) Name() string { return "gzip" }

func (gzipMethod) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, gzip.DefaultCompression)
}

var methods = map[string]CompressionMethod{
	"zstd": zstdMethod{},
	"gzip": gzipMethod{},
}

// negotiate picks the preferred method when the client accepts it, then any
// other accepted one. nil means identity.
func negotiate(r *http.Request, preferred string) CompressionMethod {
	accepted := map[string]bool{}
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		token, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.TrimSpace(params) == "q=0" {
			continue
		}
		accepted[strings.ToLower(strings.TrimSpace(token))] = true
	}
	if preferred == "none" {
		return nil
	}
	if m, ok := methods[preferred]; ok && accepted[preferred] {
		return m
	}
	for _, name := range []string{"zstd", "gzip"} {
		if accepted[name] {
			return methods[name]
		}
	}
	return nil
}

// writeBody sends body with the negotiated encoding.
func writeBody(w http.ResponseWriter, r *http.Request, preferred, contentType string, status int, body []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Add("Vary", "Accept-Encoding")

	m := negotiate(r, preferred)
	if m == nil {
		w.WriteHeader(status)
		_, err := w.Write(body)
		return err
	}

	w.Header().Set("Content-Encoding", m.Name())
	w.WriteHeader(status)
	cw, err := m.Writer(w)
	if err != nil {
		return err
	}
	if _, err := cw.Write(body); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}
