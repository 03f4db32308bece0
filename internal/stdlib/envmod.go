package stdlib

import (
	"os"
	"sort"
	"strings"

	"github.com/b-macker/naab/internal/runtime"
)

// envModule surfaces process environment variables plus the script's own
// positional arguments.
type envModule struct {
	host *Host
}

func (*envModule) Name() string { return "env" }

func (m *envModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "get":
		v, ok := os.LookupEnv(argString(args, 0))
		if !ok {
			return runtime.Null(), nil
		}
		return runtime.String(v), nil
	case "set":
		os.Setenv(argString(args, 0), argString(args, 1))
		return runtime.Null(), nil
	case "vars":
		d := runtime.NewOrderedDict()
		entries := os.Environ()
		sort.Strings(entries)
		for _, e := range entries {
			if i := strings.IndexByte(e, '='); i >= 0 {
				d.Set(e[:i], runtime.String(e[i+1:]))
			}
		}
		return runtime.Dict(d), nil
	case "get_args", "args":
		items := make([]*runtime.Value, len(m.host.args))
		for i, a := range m.host.args {
			items[i] = runtime.String(a)
		}
		return runtime.List(items), nil
	default:
		return nil, errUnknown("env", fn)
	}
}
