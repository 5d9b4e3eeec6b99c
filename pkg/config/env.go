package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// EnvPrefix namespaces the environment variables read by ApplyEnv
const EnvPrefix = "SITE_SNAPSHOT_"

// LookupFunc reports the value of an environment variable, like os.LookupEnv
type LookupFunc func(key string) (string, bool)

// EnvLookup returns a lookup that consults the process environment first and
// then the KEY=VALUE pairs of the dotenv file at path. A missing file is not an
// error. The process environment itself is left untouched.
func EnvLookup(path string) (LookupFunc, error) {
	fileVars := map[string]string{}
	if path != "" {
		vars, err := godotenv.Read(path)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("%w: reading env file '%s': %w", utils.ErrConfigValidation, path, err)
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}, nil
}

// ApplyEnv overlays SITE_SNAPSHOT_* variables onto c. Unset or empty
// variables leave the field alone. Returns the names of the variables applied.
func (c *AppConfig) ApplyEnv(lookup LookupFunc) ([]string, error) {
	var applied []string
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return "", false
		}
		applied = append(applied, EnvPrefix+name)
		return v, true
	}
	bad := func(name, v string, err error) error {
		return fmt.Errorf("%w: %s%s='%s': %w", utils.ErrConfigValidation, EnvPrefix, name, v, err)
	}

	if v, ok := get("TARGET_HOST"); ok {
		c.TargetHost = v
	}
	if v, ok := get("START_URLS"); ok {
		var urls []string
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		c.StartURLs = urls
	}
	if v, ok := get("MAX_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return applied, bad("MAX_DEPTH", v, err)
		}
		c.MaxDepth = n
	}
	if v, ok := get("MAX_PAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return applied, bad("MAX_PAGES", v, err)
		}
		c.MaxPages = n
	}
	if v, ok := get("USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := get("RESPECT_ROBOTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return applied, bad("RESPECT_ROBOTS", v, err)
		}
		c.RespectRobots = b
	}
	if v, ok := get("OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	return applied, nil
}
