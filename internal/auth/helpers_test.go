package auth

import (
	"encoding/json"
	"io"
)

func decodeJSON(r io.ReadCloser, out any) error {
	defer r.Close()
	return json.NewDecoder(r).Decode(out)
}
