// Package keyword turns friendly build keywords such as "debug" or "gcc10"
// into CMake cache definitions.
package keyword

import (
	"path/filepath"
	"strings"
)

// TestInstallDir is the directory, relative to the working directory, that
// the "test-install" keyword points CMAKE_INSTALL_PREFIX at.
const TestInstallDir = "_test_install_prefix"

var fixed = map[string]string{
	"debug":      "-DCMAKE_BUILD_TYPE=Debug",
	"release":    "-DCMAKE_BUILD_TYPE=Release",
	"native":     "-DENABLE_NATIVE=ON",
	"nonative":   "-DENABLE_NATIVE=OFF",
	"strict":     "-DENABLE_STRICT=ON",
	"nostrict":   "-DENABLE_STRICT=OFF",
	"sanitize":   "-DENABLE_SANITIZER=ON",
	"nosanitize": "-DENABLE_SANITIZER=OFF",
}

// compiler families: C driver prefix -> C++ driver prefix
var compilers = []struct{ cc, cxx string }{
	{"gcc", "g++"},
	{"clang", "clang++"},
}

// UnknownError reports a token that is neither a flag nor a known keyword.
type UnknownError struct {
	Token string
}

func (e *UnknownError) Error() string {
	return "unknown keyword: " + e.Token
}

// Translator expands keywords. Dir is the working directory used by
// "test-install"; Aliases holds extra lower-cased keywords from bootstrap.toml.
type Translator struct {
	Dir     string
	Aliases map[string][]string
}

// Translate expands tokens in order. Tokens starting with '-' are passed
// through untouched so they keep their position relative to the expansions.
func (t *Translator) Translate(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		flags, err := t.expand(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, flags...)
	}
	return out, nil
}

func (t *Translator) expand(tok string) ([]string, error) {
	if strings.HasPrefix(tok, "-") {
		return []string{tok}, nil
	}

	lower := strings.ToLower(tok)
	if flag, ok := fixed[lower]; ok {
		return []string{flag}, nil
	}

	for _, c := range compilers {
		if strings.HasPrefix(lower, c.cc) {
			// keep the token as typed for CC; the suffix carries the version
			return []string{
				"-DCMAKE_C_COMPILER=" + tok,
				"-DCMAKE_CXX_COMPILER=" + c.cxx + tok[len(c.cc):],
			}, nil
		}
	}

	if strings.HasPrefix(lower, "test-install") {
		return []string{"-DCMAKE_INSTALL_PREFIX=" + filepath.Join(t.Dir, TestInstallDir)}, nil
	}

	if flags, ok := t.Aliases[lower]; ok {
		return flags, nil
	}

	return nil, &UnknownError{Token: tok}
}

// Help lists the built-in keywords.
const Help = "debug, release, [no]native, [no]strict, [no]sanitize, gcc<ver>, clang<ver>, test-install"
