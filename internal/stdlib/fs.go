package stdlib

import (
	"os"
	"sort"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type fsModule struct{}

func (*fsModule) Name() string { return "fs" }

func (m *fsModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "read_file":
		if err := argCount("fs", fn, args, 1); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(argString(args, 0))
		if err != nil {
			return nil, diag.New(diag.RuntimeError, "fs.read_file: %v", err)
		}
		return runtime.String(string(data)), nil
	case "write_file":
		if err := argCount("fs", fn, args, 2); err != nil {
			return nil, err
		}
		if err := os.WriteFile(argString(args, 0), []byte(argString(args, 1)), 0o644); err != nil {
			return nil, diag.New(diag.RuntimeError, "fs.write_file: %v", err)
		}
		return runtime.Null(), nil
	case "append_file":
		if err := argCount("fs", fn, args, 2); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(argString(args, 0), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, diag.New(diag.RuntimeError, "fs.append_file: %v", err)
		}
		defer f.Close()
		if _, err := f.WriteString(argString(args, 1)); err != nil {
			return nil, diag.New(diag.RuntimeError, "fs.append_file: %v", err)
		}
		return runtime.Null(), nil
	case "exists":
		_, err := os.Stat(argString(args, 0))
		return runtime.Bool(err == nil), nil
	case "delete", "remove":
		if err := os.Remove(argString(args, 0)); err != nil {
			return nil, diag.New(diag.RuntimeError, "fs.delete: %v", err)
		}
		return runtime.Null(), nil
	case "mkdir":
		if err := os.MkdirAll(argString(args, 0), 0o755); err != nil {
			return nil, diag.New(diag.RuntimeError, "fs.mkdir: %v", err)
		}
		return runtime.Null(), nil
	case "list_dir":
		entries, err := os.ReadDir(argString(args, 0))
		if err != nil {
			return nil, diag.New(diag.RuntimeError, "fs.list_dir: %v", err)
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		sort.Strings(names)
		items := make([]*runtime.Value, len(names))
		for i, n := range names {
			items[i] = runtime.String(n)
		}
		return runtime.List(items), nil
	default:
		return nil, errUnknown("fs", fn)
	}
}
