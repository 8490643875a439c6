// Package fingerprint builds HTTP transports whose TLS ClientHello mimics a
// real browser. Social sites serving lead pages fingerprint the handshake,
// and the default Go TLS stack is an easy block.
package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	utls "github.com/refraction-networking/utls"
)

// Profile names a TLS handshake identity.
type Profile string

const (
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileSafari  Profile = "safari"
	ProfileGo      Profile = "go"     // standard library TLS
	ProfileRandom  Profile = "random" // randomized uTLS hello
)

func helloID(p Profile) (utls.ClientHelloID, error) {
	switch p {
	case ProfileChrome:
		return utls.HelloChrome_Auto, nil
	case ProfileFirefox:
		return utls.HelloFirefox_Auto, nil
	case ProfileSafari:
		return utls.HelloIOS_Auto, nil
	case ProfileRandom:
		return utls.HelloRandomizedALPN, nil
	}
	return utls.ClientHelloID{}, fmt.Errorf("unknown fingerprint profile %q", p)
}

// Transport returns a RoundTripper using the given profile. ProfileGo keeps
// the stock TLS dialer; every other profile handshakes through utls.UClient
// over the transport's own TCP dial. proxyFunc, when non-nil, becomes the
// transport's Proxy.
func Transport(p Profile, proxyFunc func(*http.Request) (*url.URL, error)) (http.RoundTripper, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if proxyFunc != nil {
		tr.Proxy = proxyFunc
	}
	if p == ProfileGo {
		return tr, nil
	}

	id, err := helloID(p)
	if err != nil {
		return nil, err
	}

	tr.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		raw, err := tr.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		conn := utls.UClient(raw, &utls.Config{ServerName: host}, id)
		if err := conn.HandshakeContext(ctx); err != nil {
			_ = raw.Close()
			return nil, fmt.Errorf("utls handshake failed: %w", err)
		}
		return conn, nil
	}

	return tr, nil
}
