package distribution

import (
	"errors"
	"fmt"
	"testing"
)

func TestParsePrivacy(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   Privacy
		want  Privacy
	}{
		{name: "emptyUsesDefault", value: "", def: PrivacyPublic, want: PrivacyPublic},
		{name: "emptyUsesConfiguredDefault", value: "", def: PrivacyPrivate, want: PrivacyPrivate},
		{name: "unlisted", value: "unlisted", def: PrivacyPublic, want: PrivacyUnlisted},
		{name: "unknownPassedThrough", value: "friends", def: PrivacyPublic, want: Privacy("friends")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePrivacy(tt.value, tt.def); got != tt.want {
				t.Errorf("ParsePrivacy(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestPrivacyValid(t *testing.T) {
	for _, p := range Privacies {
		if !p.Valid() {
			t.Errorf("%q.Valid() = false", p)
		}
	}
	if Privacy("friends").Valid() {
		t.Error(`"friends".Valid() = true`)
	}
}

func TestErrorMessageIsUnderlying(t *testing.T) {
	err := NewError(KindRemote, errors.New("quota exceeded"))
	if err.Error() != "quota exceeded" {
		t.Errorf("Error() = %q, want %q", err.Error(), "quota exceeded")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "direct", err: Errorf(KindAuth, "no token"), want: KindAuth},
		{name: "wrapped", err: fmt.Errorf("upload: %w", NewError(KindIO, errors.New("disk full"))), want: KindIO},
		{name: "plain", err: errors.New("boom"), want: KindUnknown},
		{name: "nil", err: nil, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}
