package main

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is what login verifies against when the username is unknown, so
// both failure paths cost one bcrypt compare and collapse into the same 401.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("el-faro-dummy"), bcrypt.DefaultCost)

// findAccount matches usernames case-insensitively; registration and login
// both treat "Ana" and "ana" as the same account.
func findAccount(doc *Document, username string) *Account {
	for i := range doc.Users {
		if strings.EqualFold(doc.Users[i].Username, username) {
			return &doc.Users[i]
		}
	}
	return nil
}

// registerAccount appends a new account with a bcrypt hash of the password.
// Fails with ErrDuplicateUser when the username is already taken.
func registerAccount(s Store, username, password string) (Account, error) {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.Load()
	if err != nil {
		return Account{}, err
	}
	if findAccount(doc, username) != nil {
		return Account{}, ErrDuplicateUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	acct := Account{Username: username, PasswordHash: string(hash)}
	doc.Users = append(doc.Users, acct)
	if err := s.Save(doc); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// authenticate returns the stored account when the password verifies.
// Unknown username and wrong password are both ErrInvalidCredentials.
func authenticate(s Store, username, password string) (Account, error) {
	doc, err := s.Load()
	if err != nil {
		return Account{}, err
	}
	acct := findAccount(doc, username)
	stored := dummyHash
	if acct != nil {
		stored = []byte(acct.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(stored, []byte(password)) != nil || acct == nil {
		return Account{}, ErrInvalidCredentials
	}
	return *acct, nil
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/register
func handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentialsReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		errorJSON(w, http.StatusBadRequest, "username and password required")
		return
	}

	acct, err := registerAccount(store, in.Username, in.Password)
	if err == ErrDuplicateUser {
		errorJSON(w, http.StatusConflict, "username already in use")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "username": acct.Username})
}

// POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentialsReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		errorJSON(w, http.StatusBadRequest, "username and password required")
		return
	}

	acct, err := authenticate(store, in.Username, in.Password)
	if err == ErrInvalidCredentials {
		errorJSON(w, http.StatusUnauthorized, "invalid username or password")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "storage error")
		return
	}
	// Respond with the stored casing, not whatever the caller typed
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "username": acct.Username})
}
