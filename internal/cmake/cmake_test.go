package cmake

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/qobs-build/bootstrap/internal/proc"
)

const makefileHelp = `The following are some of the valid targets for this Makefile:
... all (the default if no target is provided)
... clean
... depend
... edit_cache
... install
... check
... foo_test
`

const ninjaHelp = `[1/1] All primary targets available:
all: phony
checkstyle: phony
bench_foo: phony
`

func TestListsTarget(t *testing.T) {
	tests := []struct {
		listing string
		target  string
		want    bool
	}{
		{makefileHelp, "check", true},
		{makefileHelp, "install", true},
		{makefileHelp, "bench", false},
		{makefileHelp, "foo", false},
		{makefileHelp, "test", false},
		{ninjaHelp, "check", false},
		{ninjaHelp, "bench", false},
		{ninjaHelp, "bench_foo", true},
		{"", "all", false},
		{"... a.b\n", "a.b", true},
		{"... axb\n", "a.b", false},
	}
	for _, tt := range tests {
		if got := ListsTarget([]byte(tt.listing), tt.target); got != tt.want {
			t.Errorf("ListsTarget(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestConfigure(t *testing.T) {
	f := &proc.Fake{}
	c := New(f, "cmake")
	ctx := context.Background()

	if err := c.Configure(ctx, "/src", []string{"-DCMAKE_BUILD_TYPE=Debug"}, false); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := c.Configure(ctx, "/src", []string{"-DCMAKE_BUILD_TYPE=Debug"}, true); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := c.Configure(ctx, "/src", nil, false); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	want := []string{
		"cmake -DCMAKE_BUILD_TYPE=Debug /src",
		"cmake -L -DCMAKE_BUILD_TYPE=Debug /src",
		"cmake /src",
	}
	if !slices.Equal(f.Calls, want) {
		t.Errorf("calls = %q, want %q", f.Calls, want)
	}
}

func TestConfigureFailure(t *testing.T) {
	f := &proc.Fake{}
	f.Set([]string{"cmake", "/src"}, proc.FakeResult{Status: 5})
	err := New(f, "cmake").Configure(context.Background(), "/src", nil, false)
	var exitErr *proc.ExitError
	if !errors.As(err, &exitErr) || exitErr.Status != 5 {
		t.Errorf("Configure error = %v, want status 5", err)
	}
}

func TestBuildAndHasTarget(t *testing.T) {
	f := &proc.Fake{}
	f.Set([]string{"cmake", "--build", ".", "--target", "help"}, proc.FakeResult{Stdout: makefileHelp})
	c := New(f, "cmake")
	ctx := context.Background()

	if err := c.Build(ctx, "all"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := c.BuildDir(ctx, "benchmarks"); err != nil {
		t.Fatalf("BuildDir: %v", err)
	}
	ok, err := c.HasTarget(ctx, "check")
	if err != nil || !ok {
		t.Fatalf("HasTarget(check) = %v, %v", ok, err)
	}

	want := []string{
		"cmake --build . --target all",
		"cmake --build benchmarks",
		"cmake --build . --target help",
	}
	if !slices.Equal(f.Calls, want) {
		t.Errorf("calls = %q, want %q", f.Calls, want)
	}
}

func TestHasTargetQueryFails(t *testing.T) {
	f := &proc.Fake{}
	f.Set([]string{"cmake", "--build", ".", "--target", "help"}, proc.FakeResult{Status: 1})
	ok, err := New(f, "cmake").HasTarget(context.Background(), "check")
	if err == nil || ok {
		t.Errorf("HasTarget = %v, %v; want false and an error", ok, err)
	}
}
