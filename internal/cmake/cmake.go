// Package cmake wraps the cmake configure and build steps used by bootstrap.
package cmake

import (
	"bufio"
	"bytes"
	"context"
	"regexp"

	"github.com/qobs-build/bootstrap/internal/proc"
)

// CMake drives a CMake build tree located in the current directory.
type CMake struct {
	r   proc.Runner
	exe string
}

// New returns a CMake that runs exe through r.
func New(r proc.Runner, exe string) *CMake {
	return &CMake{r: r, exe: exe}
}

// Configure runs "cmake [-L] <flags...> <sourceDir>". listCache requests the
// cache variable listing and is placed before every other flag.
func (c *CMake) Configure(ctx context.Context, sourceDir string, flags []string, listCache bool) error {
	args := make([]string, 0, len(flags)+2)
	if listCache {
		args = append(args, "-L")
	}
	args = append(args, flags...)
	args = append(args, sourceDir)
	return proc.Check(ctx, c.r, &proc.Cmd{Name: c.exe, Args: args})
}

// Build runs "cmake --build . --target <target>".
func (c *CMake) Build(ctx context.Context, target string) error {
	return proc.Check(ctx, c.r, &proc.Cmd{Name: c.exe, Args: []string{"--build", ".", "--target", target}})
}

// BuildDir runs "cmake --build <dir>", building every default target of a
// sub-tree of the build directory.
func (c *CMake) BuildDir(ctx context.Context, dir string) error {
	return proc.Check(ctx, c.r, &proc.Cmd{Name: c.exe, Args: []string{"--build", dir}})
}

// Targets returns the raw output of "cmake --build . --target help".
func (c *CMake) Targets(ctx context.Context) ([]byte, error) {
	return proc.Output(ctx, c.r, &proc.Cmd{Name: c.exe, Args: []string{"--build", ".", "--target", "help"}})
}

// HasTarget reports whether target appears as a whole word on any line of
// the target listing.
func (c *CMake) HasTarget(ctx context.Context, target string) (bool, error) {
	out, err := c.Targets(ctx)
	if err != nil {
		return false, err
	}
	return ListsTarget(out, target), nil
}

// ListsTarget searches a target listing line by line.
func ListsTarget(listing []byte, target string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(target) + `\b`)
	sc := bufio.NewScanner(bytes.NewReader(listing))
	for sc.Scan() {
		if re.Match(sc.Bytes()) {
			return true
		}
	}
	return false
}
