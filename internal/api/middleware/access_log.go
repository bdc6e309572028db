package middleware

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// One JSON line per request. Route is the chi pattern so lines for different
// rooms group together; RoomID carries the concrete room.
type accessLogEntry struct {
	Timestamp    string `json:"ts"`
	Method       string `json:"method"`
	Path         string `json:"path"`
	Route        string `json:"route"`
	Status       int    `json:"status"`
	RequestBytes int64  `json:"request_bytes,omitempty"`
	Bytes        int    `json:"bytes"`
	DurationMS   int64  `json:"duration_ms"`
	RequestID    string `json:"request_id,omitempty"`
	RoomID       string `json:"room_id,omitempty"`
	RemoteAddr   string `json:"remote_addr,omitempty"`
	UserAgent    string `json:"user_agent,omitempty"`
}

// statusRecorder remembers the status and size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Status is the written status, 200 if the handler never wrote one.
func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// AccessLog writes a JSON access log line once the request has been served.
// Audio uploads can take seconds while the model transcribes, so duration and
// request size are what to look at first.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		entry := accessLogEntry{
			Timestamp:    start.UTC().Format(time.RFC3339Nano),
			Method:       r.Method,
			Path:         r.URL.Path,
			Route:        RoutePattern(r),
			Status:       rec.Status(),
			RequestBytes: max(r.ContentLength, 0),
			Bytes:        rec.bytes,
			DurationMS:   time.Since(start).Milliseconds(),
			RequestID:    GetRequestID(r.Context()),
			RoomID:       RoomID(r),
			RemoteAddr:   clientIP(r),
			UserAgent:    r.UserAgent(),
		}

		payload, err := json.Marshal(entry)
		if err != nil {
			log.Printf("access_log_marshal_error: %v", err)
			return
		}
		log.Println(string(payload))
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
