package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config is used to hold all runtime configuration.
type Config struct {
	Custody struct {
		OperatorName string `default:"Custody" envconfig:"OPERATOR_NAME"`
		Version      string `envconfig:"VERSION"`
		IsTest       bool   `default:"true" envconfig:"IS_TEST"`
	}
	AWS struct {
		Region          string `default:"ap-southeast-2" envconfig:"AWS_REGION" json:"AWS_REGION"`
		AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID" json:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY" json:"AWS_SECRET_ACCESS_KEY"`
	}
	Storage struct {
		Bucket string `default:"standalone" envconfig:"CUSTODY_STORAGE_BUCKET"`
		Root   string `default:"./tmp" envconfig:"CUSTODY_STORAGE_ROOT"`
	}
}

// SafeConfig masks sensitive config values.
func SafeConfig(cfg Config) *Config {
	cfgSafe := cfg

	if len(cfgSafe.AWS.AccessKeyID) > 0 {
		cfgSafe.AWS.AccessKeyID = "*** Masked ***"
	}
	if len(cfgSafe.AWS.SecretAccessKey) > 0 {
		cfgSafe.AWS.SecretAccessKey = "*** Masked ***"
	}

	return &cfgSafe
}

// Environment returns configuration sourced from environment variables.
func Environment() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CUSTODY", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
