package stdlib

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type cryptoModule struct{}

func (*cryptoModule) Name() string { return "crypto" }

func (m *cryptoModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "sha256":
		sum := sha256.Sum256([]byte(argString(args, 0)))
		return runtime.String(hex.EncodeToString(sum[:])), nil
	case "sha1":
		sum := sha1.Sum([]byte(argString(args, 0)))
		return runtime.String(hex.EncodeToString(sum[:])), nil
	case "md5":
		sum := md5.Sum([]byte(argString(args, 0)))
		return runtime.String(hex.EncodeToString(sum[:])), nil
	case "hmac_sha256":
		if err := argCount("crypto", fn, args, 2); err != nil {
			return nil, err
		}
		mac := hmac.New(sha256.New, []byte(argString(args, 1)))
		mac.Write([]byte(argString(args, 0)))
		return runtime.String(hex.EncodeToString(mac.Sum(nil))), nil
	case "base64_encode":
		return runtime.String(base64.StdEncoding.EncodeToString([]byte(argString(args, 0)))), nil
	case "base64_decode":
		data, err := base64.StdEncoding.DecodeString(argString(args, 0))
		if err != nil {
			return nil, diag.New(diag.RuntimeError, "crypto.base64_decode: %v", err)
		}
		return runtime.String(string(data)), nil
	case "uuid":
		return runtime.String(uuid.NewString()), nil
	default:
		return nil, errUnknown("crypto", fn)
	}
}
