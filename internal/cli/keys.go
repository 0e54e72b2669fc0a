package cli

import (
	"reflect"
	"strings"

	"github.com/ppiankov/ontolens/internal/model"
)

// configKeys lists the dotted mapstructure keys of model.Config
func configKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
			if name == "" || name == "-" {
				continue
			}
			if prefix != "" {
				name = prefix + "." + name
			}
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name)
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(model.Config{}), "")
	return keys
}
