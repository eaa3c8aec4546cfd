// Package middleware provides various middleware functionality.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedNetHandler sets object structure.
type TrustedNetHandler struct {
	IPNet *net.IPNet
	log   *slog.Logger
}

// NewTrustedNetHandler initializes a new trusted network handler. An empty subnet leaves guarded
// routes open.
func NewTrustedNetHandler(subnet string, log *slog.Logger) (*TrustedNetHandler, error) {
	if log == nil {
		log = slog.Default()
	}
	tn := &TrustedNetHandler{log: log}
	if subnet == "" {
		return tn, nil
	}
	_, ipnet, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil, err
	}
	tn.IPNet = ipnet
	return tn, nil
}

// TrustedNetworkHandler rejects requests coming from outside the trusted network.
func (tn *TrustedNetHandler) TrustedNetworkHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tn.IPNet == nil || tn.IPNet.Contains(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		tn.log.Warn("internal subnet access violation", "remote", r.RemoteAddr, "path", r.URL.Path)
		http.Error(w, "Internal subnet access violation", http.StatusForbidden)
	})
}

// clientIP prefers proxy headers over the peer address.
func clientIP(r *http.Request) net.IP {
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
