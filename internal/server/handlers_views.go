package server

import (
	"net/http"
	"strconv"

	"classbuzz/internal/web"

	"github.com/a-h/templ"
	"github.com/skip2/go-qrcode"
)

func (s *Server) handleStudentView(w http.ResponseWriter, r *http.Request) {
	templ.Handler(web.StudentView()).ServeHTTP(w, r)
}

func (s *Server) handleHostView(w http.ResponseWriter, r *http.Request) {
	templ.Handler(web.HostView(s.joinURL(r))).ServeHTTP(w, r)
}

// handleQR renders the student page URL as a PNG for the projector.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	size := s.cfg.QRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 64 && value <= 1024 {
			size = value
		}
	}
	png, err := qrcode.Encode(s.joinURL(r), qrcode.Medium, size)
	if err != nil {
		s.log.Error().Err(err).Msg("qr encode failed")
		http.Error(w, "failed to render qr code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) joinURL(r *http.Request) string {
	if s.cfg.PublicURL != "" {
		return s.cfg.PublicURL + "/"
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}
