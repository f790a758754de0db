/*
Package config provides the configuration-value accessor used by phabstractic
components.

A Config wraps a map[string]any. Typed accessors never fail: a missing key or a
value of the wrong type yields the caller's default, so every option has a
documented fallback.

	cfg := config.New(map[string]any{"strict": true})

	strict := cfg.Bool("strict", false)          // true
	prefix := cfg.String("prefix", "event")      // "event"

# Defaults

Merge overlays a Config on a set of defaults, the usual way a component
combines its built-in options with what the caller passed:

	opts := cfg.Merge(map[string]any{"strict": false, "include_identifier": false})

# Sections

YAML and JSON documents often nest sections. Sub returns one nested map as a
Config and Sections returns a list of them:

	for _, f := range cfg.Sections("filters") {
	    filter := event.FilterFromConfig(f)
	    // ...
	}

# Loading

	cfg, err := config.FromFile("router.yaml")
	cfg, err = config.FromYAML(data)
	cfg, err = config.FromJSON(data)

Config is safe for concurrent reads. Merge and With return new values and
leave the receiver untouched.
*/
package config
