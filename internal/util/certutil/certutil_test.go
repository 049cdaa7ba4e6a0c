//go:build unit

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

package certutil_test

import (
	"crypto/x509"
	"encoding/pem"
	"net"
	"testing"

	"github.com/alexandremahdhaoui/warden/internal/util/certutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCert(t *testing.T, b []byte) *x509.Certificate {
	t.Helper()

	block, rest := pem.Decode(b)
	require.NotNil(t, block)
	assert.Empty(t, rest)
	assert.Equal(t, "CERTIFICATE", block.Type)

	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	return cert
}

func TestCA(t *testing.T) {
	ca, err := certutil.NewCA()
	require.NoError(t, err)
	require.NotNil(t, ca.Pool())

	root := parseCert(t, ca.CertPEM())
	assert.True(t, root.IsCA)
	assert.Contains(t, root.Subject.Organization, "Use in test only!")

	t.Run("NewKeyPair", func(t *testing.T) {
		kp, err := ca.NewKeyPair("inventory.local", "127.0.0.1")
		require.NoError(t, err)

		cert := parseCert(t, kp.CertPEM)
		assert.Equal(t, []string{"inventory.local"}, cert.DNSNames)
		require.Len(t, cert.IPAddresses, 1)
		assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))
		assert.NotEqual(t, root.SerialNumber, cert.SerialNumber)

		_, err = cert.Verify(x509.VerifyOptions{
			DNSName:   "inventory.local",
			Roots:     ca.Pool(),
			KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		})
		assert.NoError(t, err)

		tlsCert, err := kp.TLSCertificate()
		require.NoError(t, err)
		assert.NotNil(t, tlsCert.PrivateKey)
	})

	t.Run("ForeignCA", func(t *testing.T) {
		other, err := certutil.NewCA()
		require.NoError(t, err)

		kp, err := other.NewKeyPair("inventory.local")
		require.NoError(t, err)

		_, err = parseCert(t, kp.CertPEM).Verify(x509.VerifyOptions{DNSName: "inventory.local", Roots: ca.Pool()})
		assert.Error(t, err)
	})

	t.Run("InvalidKeyPair", func(t *testing.T) {
		_, err := certutil.KeyPair{KeyPEM: []byte("nope"), CertPEM: ca.CertPEM()}.TLSCertificate()
		assert.Error(t, err)
	})
}
