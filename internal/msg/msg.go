package msg

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Out and Err receive all messages. Tests swap them for buffers.
var (
	Out io.Writer = color.Output
	Err io.Writer = color.Error
)

func line(w io.Writer, prefix, format string, a ...any) {
	fmt.Fprint(w, prefix)
	fmt.Fprint(w, ": ")
	fmt.Fprintf(w, format, a...)
	fmt.Fprint(w, "\n")
}

func Error(format string, a ...any) {
	line(Err, color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	line(Err, color.YellowString("warn"), format, a...)
}

func Info(format string, a ...any) {
	line(Out, color.HiGreenString("info"), format, a...)
}

// Status prints a right-aligned green verb followed by the message, e.g.
//
//	Running cmake -L ..
func Status(verb, format string, a ...any) {
	fmt.Fprintf(Out, "%s %s\n", color.HiGreenString("%10s", verb), fmt.Sprintf(format, a...))
}

type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (n int, err error) {
	buf := make([]byte, 0, len(p)+len(w.Indent))
	for _, c := range p {
		if !w.didIndent {
			buf = append(buf, w.Indent...)
			w.didIndent = true
		}
		buf = append(buf, c)
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	if _, err := w.W.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
