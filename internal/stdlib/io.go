package stdlib

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/b-macker/naab/internal/runtime"
)

// ioModule is the primary output surface: the book documents io.write as
// the canonical print; the `print` builtin remains supported alongside
// it.
type ioModule struct {
	host   *Host
	reader *bufio.Reader
}

func (*ioModule) Name() string { return "io" }

func (m *ioModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "write", "writeln", "println":
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.ToString()
		}
		fmt.Fprintln(m.host.out, strings.Join(parts, " "))
		return runtime.Null(), nil
	case "print":
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.ToString()
		}
		fmt.Fprint(m.host.out, strings.Join(parts, " "))
		return runtime.Null(), nil
	case "read_line":
		if m.reader == nil {
			m.reader = bufio.NewReader(m.host.in)
		}
		line, err := m.reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if err != nil && line == "" {
			return runtime.Null(), nil
		}
		return runtime.String(line), nil
	default:
		return nil, errUnknown("io", fn)
	}
}
