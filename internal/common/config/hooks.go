package config

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// CustomHooks are passed to viper.Unmarshal for every condorctl configuration.
var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		TrimmedStringSliceHookFunc(","),
		mapstructure.StringToTimeDurationHookFunc(),
	)),
}

// TrimmedStringSliceHookFunc converts a separated string (as read from an environment variable or
// a single flag value) into a []string, dropping blank entries and surrounding whitespace.
func TrimmedStringSliceHookFunc(sep string) mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		// check that src and target types are valid
		if f.Kind() != reflect.String || t != reflect.TypeOf([]string{}) {
			return data, nil
		}
		raw := data.(string)
		rv := []string{}
		for _, s := range strings.Split(raw, sep) {
			if s = strings.TrimSpace(s); s != "" {
				rv = append(rv, s)
			}
		}
		return rv, nil
	}
}
