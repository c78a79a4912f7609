package safeurl

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Schemes(t *testing.T) {
	// WHAT: Only http/https pass; applicant-supplied URLs can be anything.
	for _, u := range []string{"ftp://example.com/x", "file:///etc/passwd", "javascript:alert(1)"} {
		if err := Validate(u); !errors.Is(err, ErrUnsafeScheme) {
			t.Errorf("Validate(%q) = %v, want ErrUnsafeScheme", u, err)
		}
	}
	if err := Validate("https://93.184.216.34/"); err != nil {
		t.Errorf("public IP should pass: %v", err)
	}
}

func TestValidate_PrivateAddresses(t *testing.T) {
	// WHAT: Loopback, RFC 1918, and link-local literals are rejected.
	// WHY: The fetcher follows applicant-controlled URLs; without this an
	// application form becomes an internal network probe.
	private := []string{
		"http://127.0.0.1/admin",
		"http://10.0.0.5/",
		"http://172.16.1.1/",
		"http://192.168.0.10/",
		"http://169.254.169.254/latest/meta-data/",
		"http://[::1]/",
	}
	for _, u := range private {
		if err := Validate(u); !errors.Is(err, ErrSSRF) {
			t.Errorf("Validate(%q) = %v, want ErrSSRF", u, err)
		}
	}
}

func TestValidate_NoHost(t *testing.T) {
	if err := Validate("https:///path-only"); err == nil {
		t.Error("URL without a host should fail")
	}
}

func TestLimitedReadAll(t *testing.T) {
	// WHAT: Reads within the cap succeed; one byte over fails.
	data, err := LimitedReadAll(strings.NewReader("hello"), 5)
	if err != nil || string(data) != "hello" {
		t.Errorf("got (%q, %v)", data, err)
	}
	if _, err := LimitedReadAll(strings.NewReader("hello!"), 5); err == nil {
		t.Error("over-limit read should fail")
	}
}
