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

// Package tlsutil builds the TLS configuration of the clients talking to remote services.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

var (
	ErrIncompleteKeyPair = errors.New("certificate and key must be set together")
	ErrLoadKeyPair       = errors.New("failed to load client certificate")
	ErrLoadCA            = errors.New("failed to load CA file")
	ErrParseCA           = errors.New("failed to parse CA certificate")
)

// Config holds the TLS parameters of a client. All paths are optional.
type Config struct {
	// CAPath is the CA bundle used to verify the server. The system pool is used when empty.
	CAPath string `json:"caPath,omitempty"`
	// CertPath and KeyPath are the client certificate presented to the server.
	CertPath string `json:"certPath,omitempty"`
	KeyPath  string `json:"keyPath,omitempty"`
	// ServerName overrides the name the server certificate is verified against.
	ServerName string `json:"serverName,omitempty"`
}

// Validate checks the consistency of c without reading any file.
func (c *Config) Validate() error {
	if (c.CertPath == "") != (c.KeyPath == "") {
		return fmt.Errorf("%w: cert=%q key=%q", ErrIncompleteKeyPair, c.CertPath, c.KeyPath)
	}

	return nil
}

// BuildClientTLSConfig returns the tls.Config described by c, or nil when c is nil.
func BuildClientTLSConfig(c *Config) (*tls.Config, error) {
	if c == nil {
		return nil, nil
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{ //nolint:exhaustruct
		MinVersion: tls.VersionTLS12,
		ServerName: c.ServerName,
	}

	if c.CAPath != "" {
		b, err := os.ReadFile(c.CAPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadCA, err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(b) {
			return nil, fmt.Errorf("%w: %s", ErrParseCA, c.CAPath)
		}

		tlsConfig.RootCAs = pool
	}

	if c.CertPath != "" {
		cert, err := tls.LoadX509KeyPair(c.CertPath, c.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadKeyPair, err)
		}

		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}
