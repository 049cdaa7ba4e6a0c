/*
Copyright 2024 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"os"

	"github.com/spf13/pflag"
)

// Flags holds the command line options overriding the configuration.
type Flags struct {
	ConfigPath      string
	IntervalSeconds int64
	AppID           string
	InventoryURL    string

	flagSet *pflag.FlagSet
}

// AddFlags registers the configuration flags on flagSet.
func (f *Flags) AddFlags(flagSet *pflag.FlagSet) {
	f.flagSet = flagSet

	flagSet.StringVar(&f.ConfigPath, "config", "",
		"path to the configuration file (defaults to $"+ConfigPathEnvKey+")")
	flagSet.Int64Var(&f.IntervalSeconds, "interval", DefaultIntervalSeconds,
		"seconds slept between two control loop iterations")
	flagSet.StringVar(&f.AppID, "app", "", "UUID of the application")
	flagSet.StringVar(&f.InventoryURL, "inventory-url", DefaultInventoryURL,
		"base URL of the inventory service")
}

// Override applies the flags explicitly set on the command line to c.
func (f *Flags) Override(c *Config) {
	if f.flagSet == nil {
		return
	}

	if f.flagSet.Changed("interval") {
		c.IntervalSeconds = f.IntervalSeconds
	}
	if f.flagSet.Changed("app") {
		c.AppID = f.AppID
	}
	if f.flagSet.Changed("inventory-url") {
		c.Inventory.URL = f.InventoryURL
	}
}

// Load loads the configuration from the file passed with --config, or from $WARDEN_CONFIG_PATH, and
// applies the environment and the flags on top of it.
func (f *Flags) Load(overrides ...Override) (*Config, error) {
	path := f.ConfigPath
	if path == "" {
		path = os.Getenv(ConfigPathEnvKey)
	}

	return Load(path, append([]Override{f.Override}, overrides...)...)
}
