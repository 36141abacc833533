package config

import "sort"

var Presets = map[string]map[string]*Config{
	"playground": {
		"calm": preset("playground", func(c *Config) {
			c.Playground.BallsPerSecond = 5
		}),
		"storm": preset("playground", func(c *Config) {
			c.Playground.BallsPerSecond = 40
			c.World.Gravity = Vec{Y: 5000}
			c.Solver.Workers = 4
		}),
		"tiny": preset("playground", func(c *Config) {
			c.World.Container.Radius = 100
			c.Playground.MaxBalls = 150
		}),
		"zero-g": preset("playground", func(c *Config) {
			c.World.Gravity = Vec{}
		}),
	},
	"rope": {
		"hanging": preset("rope", func(c *Config) {
			c.Rope.Segments = 15
		}),
		"long": preset("rope", func(c *Config) {
			c.Rope.Segments = 30
			c.Rope.Radius = 6
		}),
		"loose": preset("rope", func(c *Config) {
			c.Rope.PinFirst = false
		}),
	},
	"cloth": {
		"small": preset("cloth", func(c *Config) {
			c.Cloth.Rows, c.Cloth.Cols = 15, 15
		}),
		"full": preset("cloth", func(c *Config) {
			c.Cloth.Rows, c.Cloth.Cols = 100, 100
			c.Solver.InitialCapacity = 10000
		}),
		"brittle": preset("cloth", func(c *Config) {
			c.Cloth.SnapFactor = 2
		}),
	},
	"bridge": {
		"slingshot": preset("bridge", func(c *Config) {
			c.Bridge.LaunchStrength = 3500
		}),
		"heavy": preset("bridge", func(c *Config) {
			c.Bridge.ProjectileRadius = 25
			c.Solver.CellSize = 50
		}),
	},
	"plinko": {
		"classic": preset("plinko", func(c *Config) {
			c.Plinko.Levels = 10
		}),
		"tall": preset("plinko", func(c *Config) {
			c.Plinko.Levels = 12
			c.Plinko.Spacing = 40
		}),
	},
}

func preset(scene string, mutate func(*Config)) *Config {
	cfg := ForScene(scene)
	mutate(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, name string) *Config {
	presets, ok := Presets[scene]
	if !ok {
		return nil
	}
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets(scene string) []string {
	presets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
