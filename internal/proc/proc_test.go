package proc

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

func TestCheckNonzero(t *testing.T) {
	f := &Fake{}
	f.Set([]string{"git", "clean", "-dfX"}, FakeResult{Status: 3})

	err := Check(context.Background(), f, &Cmd{Name: "git", Args: []string{"clean", "-dfX"}})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Check error = %v, want *ExitError", err)
	}
	if exitErr.Status != 3 || exitErr.Cmd != "git clean -dfX" {
		t.Errorf("ExitError = %+v", exitErr)
	}
}

func TestOutputCaptures(t *testing.T) {
	f := &Fake{}
	f.Set([]string{"cmake", "--build", ".", "--target", "help"}, FakeResult{Stdout: "... all\n... check\n"})

	out, err := Output(context.Background(), f, &Cmd{Name: "cmake", Args: []string{"--build", ".", "--target", "help"}})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if string(out) != "... all\n... check\n" {
		t.Errorf("Output = %q", out)
	}
}

func TestExecStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}

	e := &Exec{}
	status, err := e.Run(context.Background(), &Cmd{Name: "sh", Args: []string{"-c", "exit 7"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != 7 {
		t.Errorf("status = %d, want 7", status)
	}

	var sb strings.Builder
	status, err = e.Run(context.Background(), &Cmd{Name: "sh", Args: []string{"-c", "pwd"}, Dir: "/", Stdout: &sb})
	if err != nil || status != 0 {
		t.Fatalf("Run pwd: status %d, err %v", status, err)
	}
	if strings.TrimSpace(sb.String()) != "/" {
		t.Errorf("pwd = %q, want /", sb.String())
	}
}

func TestExecMissingBinary(t *testing.T) {
	e := &Exec{}
	_, err := e.Run(context.Background(), &Cmd{Name: "definitely-not-a-real-binary-xyz"})
	if err == nil {
		t.Fatal("expected a start error for a missing binary")
	}
}
