package storage

import (
	"github.com/pingcap/errors"
	"gopkg.in/ini.v1"
)

// BackendOptions holds the generic key/value pairs read from a
// credentials file's "default" section, mirroring scli.rs's
// Ini::load_from_file(credential_file) / section("default") lookup.
// This module only wires a "local"/"noop" backend, so no field here
// names a specific cloud provider.
type BackendOptions struct {
	Values map[string]string
}

// LoadBackendOptions reads path's "default" section into a
// BackendOptions.
func LoadBackendOptions(path string) (*BackendOptions, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to parse credential file %q as ini", path)
	}
	section, err := cfg.GetSection("default")
	if err != nil {
		return nil, errors.Annotatef(err, "credential file %q has no [default] section", path)
	}
	values := make(map[string]string)
	for _, key := range section.Keys() {
		values[key.Name()] = key.Value()
	}
	return &BackendOptions{Values: values}, nil
}

// Get returns a named option, or ok=false if absent.
func (o *BackendOptions) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	v, ok := o.Values[key]
	return v, ok
}
