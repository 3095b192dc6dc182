package keyword

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestTranslate(t *testing.T) {
	tr := &Translator{Dir: "/w"}

	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{}},
		{[]string{"DEBUG", "gcc10"}, []string{"-DCMAKE_BUILD_TYPE=Debug", "-DCMAKE_C_COMPILER=gcc10", "-DCMAKE_CXX_COMPILER=g++10"}},
		{[]string{"clang14"}, []string{"-DCMAKE_C_COMPILER=clang14", "-DCMAKE_CXX_COMPILER=clang++14"}},
		{[]string{"gcc"}, []string{"-DCMAKE_C_COMPILER=gcc", "-DCMAKE_CXX_COMPILER=g++"}},
		{[]string{"clang-15"}, []string{"-DCMAKE_C_COMPILER=clang-15", "-DCMAKE_CXX_COMPILER=clang++-15"}},
		{[]string{"Release"}, []string{"-DCMAKE_BUILD_TYPE=Release"}},
		{[]string{"native", "NoNative"}, []string{"-DENABLE_NATIVE=ON", "-DENABLE_NATIVE=OFF"}},
		{[]string{"strict", "nostrict"}, []string{"-DENABLE_STRICT=ON", "-DENABLE_STRICT=OFF"}},
		{[]string{"sanitize", "NOSANITIZE"}, []string{"-DENABLE_SANITIZER=ON", "-DENABLE_SANITIZER=OFF"}},
		{[]string{"test-install"}, []string{"-DCMAKE_INSTALL_PREFIX=" + filepath.Join("/w", "_test_install_prefix")}},
		{[]string{"test-install-anything"}, []string{"-DCMAKE_INSTALL_PREFIX=" + filepath.Join("/w", "_test_install_prefix")}},
		{[]string{"-debug", "debug", "-GNinja"}, []string{"-debug", "-DCMAKE_BUILD_TYPE=Debug", "-GNinja"}},
		{[]string{"strict", "debug", "release"}, []string{"-DENABLE_STRICT=ON", "-DCMAKE_BUILD_TYPE=Debug", "-DCMAKE_BUILD_TYPE=Release"}},
	}
	for _, tt := range tests {
		got, err := tr.Translate(tt.in)
		if err != nil {
			t.Errorf("Translate(%q): %v", tt.in, err)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Translate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranslateFlagsPassThrough(t *testing.T) {
	tr := &Translator{Dir: "/w"}
	for _, tok := range []string{"-", "--", "-DFOO=1", "-Wdev", "--fresh", "-gcc10", "-test-install", "-unknown"} {
		got, err := tr.Translate([]string{tok})
		if err != nil {
			t.Errorf("Translate(%q): %v", tok, err)
			continue
		}
		if len(got) != 1 || got[0] != tok {
			t.Errorf("Translate(%q) = %q, want identity", tok, got)
		}
	}
}

func TestTranslateUnknown(t *testing.T) {
	tr := &Translator{Dir: "/w"}
	for _, tok := range []string{"foo", "deb", "gc", "install", "python", ""} {
		_, err := tr.Translate([]string{"debug", tok, "release"})
		var unk *UnknownError
		if !errors.As(err, &unk) {
			t.Errorf("Translate(%q) error = %v, want *UnknownError", tok, err)
			continue
		}
		if unk.Token != tok {
			t.Errorf("UnknownError.Token = %q, want %q", unk.Token, tok)
		}
		if !strings.Contains(err.Error(), "unknown keyword: "+tok) {
			t.Errorf("error %q does not name %q", err, tok)
		}
	}
}

func TestTranslateSplitFlagValue(t *testing.T) {
	tr := &Translator{Dir: "/w"}
	_, err := tr.Translate([]string{"-G", "Ninja", "debug"})
	var unk *UnknownError
	if !errors.As(err, &unk) || unk.Token != "Ninja" {
		t.Fatalf("Translate(-G Ninja) error = %v, want unknown keyword Ninja", err)
	}
}

func TestTranslateAliases(t *testing.T) {
	tr := &Translator{
		Dir: "/w",
		Aliases: map[string][]string{
			"asan":  {"-DENABLE_SANITIZER=ON", "-DSANITIZER=address"},
			"debug": {"-DSHADOWED=1"},
		},
	}
	got, err := tr.Translate([]string{"ASan", "debug"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := []string{"-DENABLE_SANITIZER=ON", "-DSANITIZER=address", "-DCMAKE_BUILD_TYPE=Debug"}
	if !slices.Equal(got, want) {
		t.Errorf("Translate = %q, want %q", got, want)
	}
}
