// FILE: config/env.go
// Package config – environment helpers and a dependency-free .env loader for
// the cmd/kerneld host process. Nothing under kernel/, auditbus/, broker/,
// protection/, compliance/, risk/, flatten/, orchestrator/, registration/,
// or lifecycle/ imports this package: the kernel never reads the environment.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "y", "yes":
		return true
	case "0", "false", "n", "no":
		return false
	default:
		return def
	}
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// LoadDotEnv reads .env from "." and ".." and sets ONLY the keys kerneld
// needs, without overriding variables already present in the environment.
func LoadDotEnv() {
	needed := map[string]struct{}{
		"KERNELD_PORT": {}, "BROKER": {}, "AUDIT_DIR": {}, "REGISTRY_PATH": {},
		"REPORT_DIR": {}, "DAILY_LOSS_LIMIT_PCT": {}, "POSITION_LOSS_LIMIT_PCT": {},
		"MARGIN_LIMIT_PCT": {}, "CONSECUTIVE_LOSS_LIMIT": {}, "MAX_REJECTIONS": {},
		"NIGHT_SESSION_CUTOVER_MIN": {},
	}
	try := func(path string) {
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()
		s := bufio.NewScanner(f)
		for s.Scan() {
			line := strings.TrimSpace(s.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if strings.HasPrefix(line, "export ") {
				line = strings.TrimSpace(line[len("export "):])
			}
			eq := strings.Index(line, "=")
			if eq <= 0 {
				continue
			}
			key := strings.TrimSpace(line[:eq])
			if _, ok := needed[key]; !ok {
				continue
			}
			val := strings.TrimSpace(line[eq+1:])
			if len(val) >= 2 && ((val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'')) {
				val = val[1 : len(val)-1]
			}
			if idx := strings.IndexAny(val, "#"); idx >= 0 {
				val = strings.TrimSpace(val[:idx])
			}
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, val)
			}
		}
	}
	for _, base := range []string{".", ".."} {
		try(filepath.Join(base, ".env"))
	}
}
