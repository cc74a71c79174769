// Package config loads simulator configuration files. Every setting a run
// resolves, read from the file or defaulted, is recorded into an out tree;
// WriteAndClose dumps that tree next to the results and flags input settings
// nothing consumed.
package config

import (
	"log"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config wraps a parsed configuration file. Accessors panic on missing
// mandatory settings and on type mismatches.
type Config struct {
	in  *viper.Viper
	out map[string]any
}

// New parses the configuration file at path.
func New(path string) *Config {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		log.Panicf("config: input file %s could not be read: %v", path, err)
	}

	return &Config{in: v, out: map[string]any{}}
}

// Uint32 returns the mandatory setting at key.
func (c *Config) Uint32(key string) uint32 {
	return c.uint32Val(key, c.lookup(key, "uint32"))
}

// Uint32Or returns the setting at key, or def when the file omits it.
func (c *Config) Uint32Or(key string, def uint32) uint32 {
	if !c.in.IsSet(key) {
		c.record(key, def)
		return def
	}

	return c.uint32Val(key, c.in.Get(key))
}

// Uint64 returns the mandatory setting at key.
func (c *Config) Uint64(key string) uint64 {
	return c.uint64Val(key, c.lookup(key, "uint64"))
}

// Uint64Or returns the setting at key, or def when the file omits it.
func (c *Config) Uint64Or(key string, def uint64) uint64 {
	if !c.in.IsSet(key) {
		c.record(key, def)
		return def
	}

	return c.uint64Val(key, c.in.Get(key))
}

// Bool returns the mandatory setting at key.
func (c *Config) Bool(key string) bool {
	return c.boolVal(key, c.lookup(key, "bool"))
}

// BoolOr returns the setting at key, or def when the file omits it.
func (c *Config) BoolOr(key string, def bool) bool {
	if !c.in.IsSet(key) {
		c.record(key, def)
		return def
	}

	return c.boolVal(key, c.in.Get(key))
}

// String returns the mandatory setting at key.
func (c *Config) String(key string) string {
	return c.stringVal(key, c.lookup(key, "string"))
}

// StringOr returns the setting at key, or def when the file omits it.
func (c *Config) StringOr(key string, def string) string {
	if !c.in.IsSet(key) {
		c.record(key, def)
		return def
	}

	return c.stringVal(key, c.in.Get(key))
}

// Float64 returns the mandatory setting at key.
func (c *Config) Float64(key string) float64 {
	return c.float64Val(key, c.lookup(key, "float64"))
}

// Float64Or returns the setting at key, or def when the file omits it.
func (c *Config) Float64Or(key string, def float64) float64 {
	if !c.in.IsSet(key) {
		c.record(key, def)
		return def
	}

	return c.float64Val(key, c.in.Get(key))
}

// Exists reports whether the file provides a value or group at key.
func (c *Config) Exists(key string) bool {
	return c.in.IsSet(key)
}

// Subgroups lists the child groups directly under key, sorted by name. An
// empty key lists the top-level groups.
func (c *Config) Subgroups(key string) []string {
	var m map[string]any
	if key == "" {
		m = c.in.AllSettings()
	} else {
		m, _ = c.in.Get(key).(map[string]any)
	}

	var grps []string
	for name, v := range m {
		if _, ok := v.(map[string]any); ok {
			grps = append(grps, name)
		}
	}
	sort.Strings(grps)

	return grps
}

// WriteAndClose copies "*"-prefixed settings into the out tree, checks that
// every input setting was consumed, and writes the out tree to path. With
// strict set, unconsumed settings halt the run instead of warning.
func (c *Config) WriteAndClose(path string, strict bool) {
	in := c.in.AllSettings()
	copied := copyPrivate(in, c.out, "")
	unused := checkConsumed(in, c.out, "")

	if copied > 0 {
		log.Printf("config: copied %d private setting(s) to the out config", copied)
	}

	if unused > 0 {
		if strict {
			log.Panicf("config: %d setting(s) not used during configuration",
				unused)
		}
		log.Printf("config: %d setting(s) not used during configuration", unused)
	}

	data, err := yaml.Marshal(c.out)
	if err != nil {
		log.Panicf("config: out config could not be encoded: %v", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Panicf("config: out file %s could not be written: %v", path, err)
	}
}

func (c *Config) lookup(key, typeName string) any {
	if !c.in.IsSet(key) {
		log.Panicf("config: mandatory setting %s (%s) not found", key, typeName)
	}

	return c.in.Get(key)
}

func (c *Config) uint32Val(key string, raw any) uint32 {
	v, err := cast.ToUint32E(raw)
	if err != nil {
		log.Panicf("config: type error on setting %s, expected uint32", key)
	}
	c.record(key, v)

	return v
}

func (c *Config) uint64Val(key string, raw any) uint64 {
	v, err := cast.ToUint64E(raw)
	if err != nil {
		log.Panicf("config: type error on setting %s, expected uint64", key)
	}
	c.record(key, v)

	return v
}

func (c *Config) boolVal(key string, raw any) bool {
	v, err := cast.ToBoolE(raw)
	if err != nil {
		log.Panicf("config: type error on setting %s, expected bool", key)
	}
	c.record(key, v)

	return v
}

func (c *Config) stringVal(key string, raw any) string {
	if _, grp := raw.(map[string]any); grp {
		log.Panicf("config: type error on setting %s, expected string", key)
	}
	v, err := cast.ToStringE(raw)
	if err != nil {
		log.Panicf("config: type error on setting %s, expected string", key)
	}
	c.record(key, v)

	return v
}

func (c *Config) float64Val(key string, raw any) float64 {
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		log.Panicf("config: type error on setting %s, expected float64", key)
	}
	c.record(key, v)

	return v
}

// record writes a resolved value into the out tree. Viper folds keys to
// lower case, so the out tree does too; WriteAndClose compares the two trees
// key by key.
func (c *Config) record(key string, val any) {
	key = strings.ToLower(key)
	parts := strings.Split(key, ".")

	node := c.out
	for i, part := range parts[:len(parts)-1] {
		child, ok := node[part]
		if !ok {
			next := map[string]any{}
			node[part] = next
			node = next
			continue
		}

		next, ok := child.(map[string]any)
		if !ok {
			log.Panicf("config: out key %s conflicts with the value at %s",
				key, strings.Join(parts[:i+1], "."))
		}
		node = next
	}

	leaf := parts[len(parts)-1]
	old, ok := node[leaf]
	if !ok {
		node[leaf] = val
		return
	}

	if _, isGroup := old.(map[string]any); isGroup {
		log.Panicf("config: out key %s conflicts with a group of the same name",
			key)
	}

	if old != val {
		log.Panicf("config: duplicate writes to out key %s with different values",
			key)
	}
}

// copyPrivate carries "*"-prefixed settings into the out tree. They belong
// to the tooling around the simulator and must never be read by it.
func copyPrivate(in, out map[string]any, prefix string) int {
	copied := 0

	for _, name := range sortedKeys(in) {
		v := in[name]
		t, present := out[name]

		if strings.HasPrefix(name, "*") {
			if present {
				log.Panicf("config: setting %s was read, should be private",
					prefix+name)
			}
			switch v.(type) {
			case map[string]any, []any:
				log.Panicf("config: private setting %s is not a scalar, cannot copy",
					prefix+name)
			}
			out[name] = v
			copied++
			continue
		}

		sub, inIsGroup := v.(map[string]any)
		osub, outIsGroup := t.(map[string]any)
		if inIsGroup && outIsGroup {
			copied += copyPrivate(sub, osub, prefix+name+".")
		}
	}

	return copied
}

// checkConsumed warns for every input setting the run never read.
func checkConsumed(in, out map[string]any, prefix string) int {
	unused := 0

	for _, name := range sortedKeys(in) {
		v := in[name]
		t, present := out[name]

		if !present {
			log.Printf("config: setting %s not used during configuration",
				prefix+name)
			unused++
			continue
		}

		if sub, ok := v.(map[string]any); ok {
			osub, _ := t.(map[string]any)
			unused += checkConsumed(sub, osub, prefix+name+".")
		}
	}

	return unused
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
