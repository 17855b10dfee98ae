// FILE: config/config.go
// Package config – runtime configuration for the cmd/kerneld host process.
//
// This mirrors the shape of this shop's usual bot config: a flat struct of
// typed knobs, populated from the environment with sane defaults, read once
// at boot. The kernel packages never see an env var; they receive Config's
// fields translated into their own constructor arguments (risk.TriggerThresholds,
// flatten.Policy, and so on) by cmd/kerneld's wiring.
package config

import "time"

// Config holds all runtime knobs for the hosted kernel shard.
type Config struct {
	Port         int
	Broker       string // "paper" (default); kerneld exits on any other value
	AuditDir     string
	RegistryPath string
	ReportDir    string

	DailyLossLimitPct    float64
	PositionLossLimitPct float64
	MarginLimitPct       float64
	ConsecutiveLossLimit int

	MaxRejections int

	NightSessionCutover time.Duration // offset into the day, e.g. 20h30m
}

// LoadFromEnv reads the process env (already hydrated by LoadDotEnv()) and
// returns a Config with defaults for any missing keys.
func LoadFromEnv() Config {
	return Config{
		Port:         getEnvInt("KERNELD_PORT", 8090),
		Broker:       getEnv("BROKER", "paper"),
		AuditDir:     getEnv("AUDIT_DIR", "./audit"),
		RegistryPath: getEnv("REGISTRY_PATH", "./registry.json"),
		ReportDir:    getEnv("REPORT_DIR", "./reports"),

		DailyLossLimitPct:    getEnvFloat("DAILY_LOSS_LIMIT_PCT", 0.03),
		PositionLossLimitPct: getEnvFloat("POSITION_LOSS_LIMIT_PCT", 0.05),
		MarginLimitPct:       getEnvFloat("MARGIN_LIMIT_PCT", 0.85),
		ConsecutiveLossLimit: getEnvInt("CONSECUTIVE_LOSS_LIMIT", 5),

		MaxRejections: getEnvInt("MAX_REJECTIONS", 10),

		NightSessionCutover: time.Duration(getEnvInt("NIGHT_SESSION_CUTOVER_MIN", 20*60+30)) * time.Minute,
	}
}
