package conf

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the YAML config file. Its values only fill settings the command
// line left unset.
type File struct {
	Demangle string `yaml:"demangle"`
	Syntax   string `yaml:"syntax"`
	UseGDB   bool   `yaml:"gdb"`
	GDBPath  string `yaml:"gdb_path"`
	Verbose  bool   `yaml:"verbose"`
}

func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	return ParseFile(b)
}

func ParseFile(b []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse config file")
	}
	return &f, nil
}

func (f *File) apply(cfg *Config) {
	if cfg.Demangle == "" {
		cfg.Demangle = f.Demangle
	}
	if cfg.Syntax == "" {
		cfg.Syntax = f.Syntax
	}
	if cfg.GDBPath == "" {
		cfg.GDBPath = f.GDBPath
	}
	cfg.UseGDB = cfg.UseGDB || f.UseGDB
	cfg.Verbose = cfg.Verbose || f.Verbose
}
