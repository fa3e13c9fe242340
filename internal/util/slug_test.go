package util

import (
	"net/http/httptest"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"Page 123", "page-123"},
		{"Café résumé", "cafe-resume"},
		{"Hello   World", "hello-world"},
		{"Hello - World", "hello-world"},
		{"  Hello World  ", "hello-world"},
		{"snake_case_title", "snake-case-title"},
		{"!@#$%^&*()", ""},
		{"日本語タイトル", ""},
		{"Über München", "uber-munchen"},
		{"", ""},
		{"HeLLo WoRLd", "hello-world"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := Slugify(tt.input); result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestAnchors(t *testing.T) {
	a := NewAnchors()

	got := []string{a.ID("Intro"), a.ID("Setup"), a.ID("Intro"), a.ID("intro!"), a.ID("???")}
	want := []string{"intro", "setup", "intro-2", "intro-3", ""}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ID #%d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.7", "192.0.2.7"},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tt.remote
		if got := ClientIP(r); got != tt.want {
			t.Errorf("ClientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
