package param

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.SetAliasTag("json")
}

// Binding binds query values, then a json body if one is present.
func Binding(r *http.Request, v interface{}) error {
	if err := r.ParseForm(); err != nil {
		return err
	}

	if len(r.Form) > 0 {
		if err := decoder.Decode(v, r.Form); err != nil {
			return err
		}
	}

	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		return err
	}

	return nil
}
