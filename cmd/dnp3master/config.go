package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of an optional YAML config file,
// the middle tier of the CLI's flags-over-YAML-over-defaults
// precedence. Durations are plain seconds, matching the spec's wire
// vocabulary rather than Go duration strings.
type fileConfig struct {
	Host               string  `yaml:"host"`
	Port               int     `yaml:"port"`
	MasterAddress      uint16  `yaml:"master_address"`
	OutstationAddress  uint16  `yaml:"outstation_address"`
	ResponseTimeout    float64 `yaml:"response_timeout"`
	ConnectionTimeout  float64 `yaml:"connection_timeout"`
	SelectTimeout      float64 `yaml:"select_timeout"`
	MaxRetries         int     `yaml:"max_retries"`
	RetryDelay         float64 `yaml:"retry_delay"`
	Class1PollInterval float64 `yaml:"class1_poll_interval"`
	Class2PollInterval float64 `yaml:"class2_poll_interval"`
	Class3PollInterval float64 `yaml:"class3_poll_interval"`
	ConfirmRequired    bool    `yaml:"confirm_required"`
	MaxFrameSize       int     `yaml:"max_frame_size"`
	MaxAPDUSize        int     `yaml:"max_apdu_size"`
	LogLevel           string  `yaml:"log_level"`
	LogRawFrames       bool    `yaml:"log_raw_frames"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

func seconds(f float64) time.Duration { return time.Duration(f * float64(time.Second)) }
