package fingerprint

import (
	"net/http"
	"net/url"
	"testing"
)

func TestTransportProfiles(t *testing.T) {
	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileSafari, ProfileRandom} {
		rt, err := Transport(p, nil)
		if err != nil {
			t.Errorf("Transport(%q): %v", p, err)
			continue
		}
		tr, ok := rt.(*http.Transport)
		if !ok {
			t.Errorf("Transport(%q): not an *http.Transport", p)
			continue
		}
		if tr.DialTLSContext == nil {
			t.Errorf("Transport(%q): TLS dialer not installed", p)
		}
	}
}

func TestTransportGoProfile(t *testing.T) {
	rt, err := Transport(ProfileGo, nil)
	if err != nil {
		t.Fatalf("Transport(go): %v", err)
	}
	tr, ok := rt.(*http.Transport)
	if !ok {
		t.Fatal("not an *http.Transport")
	}
	if tr.DialTLSContext != nil {
		t.Error("go profile should use the standard TLS stack")
	}
}

func TestTransportUnknownProfile(t *testing.T) {
	if _, err := Transport(Profile("netscape"), nil); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestTransportProxyFunc(t *testing.T) {
	proxyURL, _ := url.Parse("http://127.0.0.1:8080")
	proxyFunc := func(*http.Request) (*url.URL, error) { return proxyURL, nil }

	for _, p := range []Profile{ProfileGo, ProfileChrome} {
		rt, err := Transport(p, proxyFunc)
		if err != nil {
			t.Fatalf("Transport(%q): %v", p, err)
		}
		tr := rt.(*http.Transport)
		if tr.Proxy == nil {
			t.Errorf("Transport(%q): proxy func not installed", p)
			continue
		}
		got, err := tr.Proxy(&http.Request{URL: &url.URL{Scheme: "https", Host: "example.com"}})
		if err != nil || got.String() != proxyURL.String() {
			t.Errorf("Transport(%q): proxy = %v, %v", p, got, err)
		}
	}
}
