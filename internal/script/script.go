package script

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/tailscale/hujson"
)

// SupportedVersions is the constraint a scenario's version must satisfy.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

var (
	errVersion = errors.New("script: unsupported version")
	errInvalid = errors.New("script: invalid")
)

// Script is a parsed scenario.
type Script struct {
	Version string     `json:"version"`
	Region  RegionSpec `json:"region"`
	Steps   []Step     `json:"steps"`
}

// RegionSpec selects the region the heap runs on.
type RegionSpec struct {
	Kind  string `json:"kind"`  // "buffer" (default) or "mapped"
	Limit int    `json:"limit"` // bytes; 0 means region.DefaultLimit
	Base  uint64 `json:"base,omitempty"`
}

// Step is one operation.
type Step struct {
	Op     string `json:"op"`
	Name   string `json:"name,omitempty"`   // binds the returned address
	Ptr    string `json:"ptr,omitempty"`    // named address, or "null"
	Offset int64  `json:"offset,omitempty"` // added to Ptr
	Size   int    `json:"size,omitempty"`
	Count  int    `json:"count,omitempty"`
	Data   string `json:"data,omitempty"`
	Byte   int    `json:"byte,omitempty"`
	Expect any    `json:"expect,omitempty"`
}

// ops lists the known operations and whether they accept an expectation.
var ops = map[string]bool{
	"malloc":   true,
	"calloc":   true,
	"realloc":  true,
	"free":     false,
	"write":    false,
	"overrun":  false,
	"poke":     false,
	"classify": true,
	"validate": true,
	"largest":  true,
	"teardown": false,
	"setup":    false,
}

// Load reads and parses a scenario file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a HuJSON scenario and checks its version and steps.
func Parse(data []byte) (*Script, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalid, err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalid, err)
	}
	if err := checkVersion(s.Version); err != nil {
		return nil, err
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return &s, nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: missing version", errVersion)
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", errVersion, v, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !c.Check(ver) {
		return fmt.Errorf("%w: %s does not satisfy %s", errVersion, ver, SupportedVersions)
	}
	return nil
}

func (s *Script) check() error {
	switch s.Region.Kind {
	case "", "buffer", "mapped":
	default:
		return fmt.Errorf("%w: region kind %q", errInvalid, s.Region.Kind)
	}
	if s.Region.Limit < 0 {
		return fmt.Errorf("%w: negative region limit", errInvalid)
	}
	for i, st := range s.Steps {
		expects, ok := ops[st.Op]
		if !ok {
			return fmt.Errorf("%w: step %d: unknown op %q", errInvalid, i, st.Op)
		}
		if st.Expect != nil && !expects {
			return fmt.Errorf("%w: step %d: %s takes no expect", errInvalid, i, st.Op)
		}
	}
	return nil
}
