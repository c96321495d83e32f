package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// newCommentID keeps the id shape the previous server minted:
// "c_" + unix millis + "_" + random suffix.
func newCommentID() string {
	suffix := "0000"
	var b [2]byte
	if _, err := rand.Read(b[:]); err == nil {
		suffix = hex.EncodeToString(b[:])
	}
	return "c_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
