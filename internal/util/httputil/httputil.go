/*
Copyright 2024 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package httputil holds the HTTP plumbing shared by the servers of an application.
package httputil

import (
	"crypto/subtle"
	"net/http"
)

// BasicAuth is a middleware that performs basic authentication.
func BasicAuth(
	next http.Handler,
	validator func(username, password string, r *http.Request) (bool, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { //nolint:varnamelen
		if username, password, ok := r.BasicAuth(); ok {
			valid, err := validator(username, password, r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			if valid {
				next.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
	}
}

// StaticCredentials returns a BasicAuth validator accepting a single username and password.
func StaticCredentials(username, password string) func(string, string, *http.Request) (bool, error) {
	return func(u, p string, _ *http.Request) (bool, error) {
		userOK := subtle.ConstantTimeCompare([]byte(u), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1

		return userOK && passOK, nil
	}
}
