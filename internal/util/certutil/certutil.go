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

// Package certutil issues certificates from an in-memory CA. It is meant for tests only.
package certutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net"
	"time"
)

var (
	errGenerateKey  = errors.New("generating private key")
	errSignCert     = errors.New("signing certificate")
	errMarshalKey   = errors.New("marshaling private key")
	errSerialNumber = errors.New("generating serial number")
	errParseKeyPair = errors.New("parsing key pair")
	errParseCert    = errors.New("parsing certificate")
)

const validity = 2 * time.Hour

// ------------------------------------------------------- CA ------------------------------------------------------- //

// CA is a self-signed certificate authority.
type CA struct {
	key  *ecdsa.PrivateKey
	cert *x509.Certificate
	pool *x509.CertPool
}

// NewCA returns a CA valid for a couple of hours.
func NewCA() (*CA, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Join(err, errGenerateKey)
	}

	template, err := newTemplate()
	if err != nil {
		return nil, err
	}

	template.IsCA = true
	template.BasicConstraintsValid = true
	template.KeyUsage = x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign | x509.KeyUsageCRLSign

	cert, err := sign(template, template, key, key)
	if err != nil {
		return nil, err
	}

	pool := x509.NewCertPool()
	pool.AddCert(cert)

	return &CA{key: key, cert: cert, pool: pool}, nil
}

// Pool returns a pool holding the CA certificate.
func (ca *CA) Pool() *x509.CertPool {
	return ca.pool
}

// CertPEM returns the CA certificate in PEM format.
func (ca *CA) CertPEM() []byte {
	return certToPEM(ca.cert)
}

// ---------------------------------------------------- KEY PAIR ---------------------------------------------------- //

// KeyPair is a PEM encoded private key and its certificate.
type KeyPair struct {
	KeyPEM  []byte
	CertPEM []byte
}

// TLSCertificate returns the key pair as a tls.Certificate.
func (kp KeyPair) TLSCertificate() (tls.Certificate, error) {
	cert, err := tls.X509KeyPair(kp.CertPEM, kp.KeyPEM)
	if err != nil {
		return tls.Certificate{}, errors.Join(err, errParseKeyPair)
	}

	return cert, nil
}

// NewKeyPair returns a key pair usable by servers and clients. Names parsing as IP addresses are
// added as IP SANs, the others as DNS SANs.
func (ca *CA) NewKeyPair(names ...string) (KeyPair, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return KeyPair{}, errors.Join(err, errGenerateKey)
	}

	template, err := newTemplate()
	if err != nil {
		return KeyPair{}, err
	}

	template.KeyUsage = x509.KeyUsageDigitalSignature
	for _, name := range names {
		if ip := net.ParseIP(name); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
			continue
		}
		template.DNSNames = append(template.DNSNames, name)
	}

	cert, err := sign(template, ca.cert, key, ca.key)
	if err != nil {
		return KeyPair{}, err
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return KeyPair{}, errors.Join(err, errMarshalKey)
	}

	return KeyPair{
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
		CertPEM: certToPEM(cert),
	}, nil
}

func newTemplate() (*x509.Certificate, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, errors.Join(err, errSerialNumber)
	}

	now := time.Now()

	return &x509.Certificate{
		Subject:      pkix.Name{Organization: []string{"Use in test only!"}},
		SerialNumber: serial,
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(validity),
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
	}, nil
}

func sign(template, parent *x509.Certificate, key, parentKey *ecdsa.PrivateKey) (*x509.Certificate, error) {
	raw, err := x509.CreateCertificate(rand.Reader, template, parent, key.Public(), parentKey)
	if err != nil {
		return nil, errors.Join(err, errSignCert)
	}

	cert, err := x509.ParseCertificate(raw)
	if err != nil {
		return nil, errors.Join(err, errParseCert)
	}

	return cert, nil
}

func certToPEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}
