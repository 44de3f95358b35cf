package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hilberthotel/internal/world"
)

// Duration is a config-friendly wrapper around time.Duration that accepts
// human readable strings such as "150ms" in JSON and YAML files while still
// allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures the tables and knobs the level pipeline and its hosts need.
type Config struct {
	Generation GenerationConfig              `json:"generation" yaml:"generation"`
	Tiles      map[world.TileKind]int        `json:"tiles" yaml:"tiles"`
	Floors     map[world.TileKind]FloorSpec  `json:"floors" yaml:"floors"`
	Enemies    map[world.TileKind]EnemyTable `json:"enemies" yaml:"enemies"`
	Maps       MapsConfig                    `json:"maps" yaml:"maps"`
	Server     ServerConfig                  `json:"server" yaml:"server"`
}

type GenerationConfig struct {
	TileSize    int   `json:"tileSize" yaml:"tile_size"`
	AttemptCap  int   `json:"attemptCap" yaml:"attempt_cap"`   // populator and decoration attempt caps
	GlowwormCap int   `json:"glowwormCap" yaml:"glowworm_cap"` // ambient spawner markers per floor
	Windows     bool  `json:"windows" yaml:"windows"`          // rare window substitutions in solid fill
	Seed        int64 `json:"seed" yaml:"seed"`                // 0 picks a seed per generation
}

// FloorSpec describes how a floor kind is decorated.
type FloorSpec struct {
	DecorationMod float64          `json:"decorationMod" yaml:"decoration_mod"`
	Decorations   []DecorationRule `json:"decorations" yaml:"decorations"`
}

// DecorationRule places one off-grid decoration kind. EmptyOffsets must all
// be free of solid tiles and Support must hold under SupportMode.
type DecorationRule struct {
	Kind         world.TileKind `json:"kind" yaml:"kind"`
	Variants     []int          `json:"variants" yaml:"variants"`
	Weight       float64        `json:"weight" yaml:"weight"`
	EmptyOffsets []Pair         `json:"emptyOffsets" yaml:"empty_offsets"`
	SupportMode  world.Mode     `json:"supportMode" yaml:"support_mode"`
	Support      []Pair         `json:"support" yaml:"support"`
	JitterX      Pair           `json:"jitterX" yaml:"jitter_x"` // inclusive pixel range
	JitterY      Pair           `json:"jitterY" yaml:"jitter_y"`
}

// EnemyTable lists the enemy spawner variants of a floor kind and their weights.
type EnemyTable struct {
	Variants []int     `json:"variants" yaml:"variants"`
	Weights  []float64 `json:"weights" yaml:"weights"`
}

type MapsConfig struct {
	Store string `json:"store" yaml:"store"` // directory, postgres:// URL, or empty for memory
}

type ServerConfig struct {
	ListenAddress   string   `json:"listenAddress" yaml:"listen_address"`
	WriteTimeout    Duration `json:"writeTimeout" yaml:"write_timeout"`
	MaxMessageBytes int64    `json:"maxMessageBytes" yaml:"max_message_bytes"`
	SendBuffer      int      `json:"sendBuffer" yaml:"send_buffer"`
}

// Pair is a two element integer list, used for offsets and ranges.
type Pair []int

// Cell converts an offset pair to a cell delta.
func (p Pair) Cell() world.Cell {
	if len(p) != 2 {
		return world.Cell{}
	}
	return world.Cell{X: p[0], Y: p[1]}
}

// Bounds returns the pair as an inclusive range, zero when unset.
func (p Pair) Bounds() (int, int) {
	if len(p) != 2 {
		return 0, 0
	}
	return p[0], p[1]
}

// Cells converts a list of offset pairs.
func Cells(pairs []Pair) []world.Cell {
	cells := make([]world.Cell, len(pairs))
	for i, p := range pairs {
		cells[i] = p.Cell()
	}
	return cells
}

// Load reads configuration from a JSON or YAML file if provided. Values in the
// file override the defaults. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// WriteFile stores cfg as YAML or JSON depending on the file extension.
func WriteFile(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// VariantCount returns the number of sprite variants registered for kind.
func (c *Config) VariantCount(kind world.TileKind) int {
	return c.Tiles[kind]
}

func (c *Config) Validate() error {
	if c.Generation.TileSize <= 0 {
		return errors.New("generation.tileSize must be positive")
	}
	if c.Generation.AttemptCap <= 0 {
		return errors.New("generation.attemptCap must be positive")
	}
	if c.Generation.GlowwormCap < 0 {
		return errors.New("generation.glowwormCap cannot be negative")
	}
	for kind, n := range c.Tiles {
		if !kind.Valid() {
			return fmt.Errorf("tiles.%s is not a known kind", kind)
		}
		if n <= 0 || n > 256 {
			return fmt.Errorf("tiles.%s must be in [1,256]", kind)
		}
	}
	for kind, spec := range c.Floors {
		if !kind.IsAutoTile() {
			return fmt.Errorf("floors.%s is not a floor kind", kind)
		}
		if spec.DecorationMod < 0 {
			return fmt.Errorf("floors.%s.decorationMod cannot be negative", kind)
		}
		for i, rule := range spec.Decorations {
			if err := c.validateRule(rule); err != nil {
				return fmt.Errorf("floors.%s.decorations[%d]: %w", kind, i, err)
			}
		}
	}
	for kind, table := range c.Enemies {
		if !kind.IsAutoTile() {
			return fmt.Errorf("enemies.%s is not a floor kind", kind)
		}
		if len(table.Variants) != len(table.Weights) {
			return fmt.Errorf("enemies.%s variants and weights differ in length", kind)
		}
		total := 0.0
		for i, w := range table.Weights {
			if w < 0 {
				return fmt.Errorf("enemies.%s.weights[%d] cannot be negative", kind, i)
			}
			total += w
		}
		if len(table.Weights) > 0 && total <= 0 {
			return fmt.Errorf("enemies.%s weights must not all be zero", kind)
		}
		for i, v := range table.Variants {
			if v < 0 || v > 255 {
				return fmt.Errorf("enemies.%s.variants[%d] out of range", kind, i)
			}
		}
	}
	if c.Server.MaxMessageBytes < 0 {
		return errors.New("server.maxMessageBytes cannot be negative")
	}
	if c.Server.SendBuffer < 0 {
		return errors.New("server.sendBuffer cannot be negative")
	}
	return nil
}

func (c *Config) validateRule(rule DecorationRule) error {
	if !rule.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", rule.Kind)
	}
	if len(rule.Variants) == 0 {
		return errors.New("variants must not be empty")
	}
	limit := c.VariantCount(rule.Kind)
	seen := make(map[int]bool, len(rule.Variants))
	for _, v := range rule.Variants {
		if v < 0 || v > 255 || (limit > 0 && v >= limit) {
			return fmt.Errorf("variant %d out of range", v)
		}
		if seen[v] {
			return fmt.Errorf("variant %d listed twice", v)
		}
		seen[v] = true
	}
	if rule.Weight <= 0 {
		return errors.New("weight must be positive")
	}
	for _, p := range append(append([]Pair{}, rule.EmptyOffsets...), rule.Support...) {
		if len(p) != 2 {
			return errors.New("offsets must hold two coordinates")
		}
	}
	for _, r := range []Pair{rule.JitterX, rule.JitterY} {
		if len(r) == 0 {
			continue
		}
		if len(r) != 2 || r[0] > r[1] {
			return errors.New("jitter must be an ordered [min, max] pair")
		}
	}
	return nil
}
