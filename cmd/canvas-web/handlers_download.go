package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const maxDownloadBytes = 32 << 20 // 32 MB

var downloadClient = &http.Client{Timeout: 60 * time.Second}

// handleDownload proxies an image so the browser saves it instead of
// navigating to it. When the fetch fails the handler falls back to a redirect,
// letting the user open the image in a new tab.
func (s *server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		httpError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		httpError(w, http.StatusBadRequest, "url must be http or https")
		return
	}

	resp, err := downloadClient.Get(rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("Image fetch failed, redirecting instead")
		http.Redirect(w, r, rawURL, http.StatusFound)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("url", rawURL).Msg("Image fetch returned error, redirecting instead")
		http.Redirect(w, r, rawURL, http.StatusFound)
		return
	}

	filename := fmt.Sprintf("canvas-%d%s", time.Now().Unix(), imageExt(parsed.Path, resp.Header.Get("Content-Type")))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxDownloadBytes)); err != nil {
		log.Warn().Err(err).Msg("Image download interrupted")
	}
}

// imageExt picks a file extension from the URL path, then the content type,
// defaulting to .png.
func imageExt(urlPath, contentType string) string {
	switch ext := strings.ToLower(path.Ext(urlPath)); ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return ext
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}
