package magicmount

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is threaded explicitly through the loader and into the node
// tree, rather than kept as global mutable state.
type Config struct {
	WorkDir    string   `mapstructure:"work_dir"`
	Magic      string   `mapstructure:"magic"`
	Partitions []string `mapstructure:"partitions"`
	ModuleRoot string   `mapstructure:"module_root"`
	ModuleMnt  string   `mapstructure:"module_mnt"`
}

// LoadConfig layers viper defaults, then an optional config file,
// then MAGICMOUNT_* environment variables, then finally the non-zero
// fields of override (populated from CLI flags by the caller):
// WorkDir, Magic and ModuleRoot replace the loaded values (ModuleRoot
// also resets ModuleMnt to ModuleRoot + "/"), Partitions are appended
// to the loaded set, and override.ModuleMnt is ignored. A missing
// config file is not an error.
func LoadConfig(override Config) (*Config, error) {
	v := viper.New()
	v.SetConfigName("magicmount")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/data/adb")
	v.AddConfigPath("$HOME/.magicmount")
	v.AddConfigPath("/etc/magicmount")

	v.SetDefault("work_dir", DefaultWorkDir)
	v.SetDefault("magic", DefaultMagic)
	v.SetDefault("partitions", DefaultPartitions())
	v.SetDefault("module_root", DefaultModuleRoot)
	v.SetDefault("module_mnt", DefaultModuleRoot+"/")

	v.SetEnvPrefix("MAGICMOUNT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if override.WorkDir != "" {
		cfg.WorkDir = override.WorkDir
	}
	if override.Magic != "" {
		cfg.Magic = override.Magic
	}
	if len(override.Partitions) > 0 {
		cfg.Partitions = append(cfg.Partitions, override.Partitions...)
	}
	if override.ModuleRoot != "" {
		cfg.ModuleRoot = override.ModuleRoot
		cfg.ModuleMnt = override.ModuleRoot + "/"
	}

	return cfg, nil
}

// moduleSourcePath reconstructs the module's on-disk contribution
// path for a node whose target now lives at nodePath: MODULE_MNT +
// module + prefix + nodePath. prefix is "" for the default system
// root (nodePath already begins with "/system") and "/system" for an
// extracted partition root (nodePath begins with the bare partition
// name, e.g. "/vendor", and modules always ship such content nested
// under their own system/ directory).
func (c *Config) moduleSourcePath(module, prefix, nodePath string) string {
	return strings.TrimRight(c.ModuleMnt, "/") + "/" + module + prefix + nodePath
}
