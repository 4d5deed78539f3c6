/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package alignalloc

import (
	"math"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

const (
	// DisableEnv is the environment variable that, if set to a non-empty value, disables the allocator: tables
	// created by the Instance are nil, and hosts use their default allocator.
	DisableEnv = "ALIGNALLOC_DISABLE"

	// BackendEnv is the environment variable with the name of the backend to use. See backend.Names.
	BackendEnv = "ALIGNALLOC_BACKEND"

	// LimitEnv is the environment variable with an optional budget of bytes (header overhead included) for the
	// backend. It accepts human-readable values, e.g. "512MiB" or "2GB".
	LimitEnv = "ALIGNALLOC_LIMIT"

	// QuietEnv is the environment variable that, if set to a non-empty value, disables the per-event log lines.
	QuietEnv = "ALIGNALLOC_QUIET"
)

// Config of an Instance.
type Config struct {
	// Enabled selects whether the Instance supplies callback tables. If false, tables are nil.
	// The build tag "alignalloc_hostdefault" disables it regardless of this value.
	Enabled bool

	// Backend name, see backend.Names. Empty selects backend.DefaultName.
	Backend string

	// LimitBytes is a budget for the backend, in bytes. 0 means no limit.
	LimitBytes int64

	// Quiet disables the per-event log lines. The running total is still maintained.
	Quiet bool

	// Logger for the per-event log lines. If nil, klog.Infof is used.
	Logger func(format string, args ...any)
}

// DefaultConfig returns an enabled configuration with the default backend and no limit.
func DefaultConfig() Config {
	return Config{Enabled: true}
}

// ConfigFromEnv returns DefaultConfig modified by the ALIGNALLOC_* environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Enabled = os.Getenv(DisableEnv) == ""
	cfg.Quiet = os.Getenv(QuietEnv) != ""
	cfg.Backend = os.Getenv(BackendEnv)
	if limit := os.Getenv(LimitEnv); limit != "" {
		n, err := ParseLimit(limit)
		if err != nil {
			return cfg, errors.WithMessagef(err, "invalid %s", LimitEnv)
		}
		cfg.LimitBytes = n
	}
	return cfg, nil
}

// ParseLimit parses a human-readable budget of bytes, e.g. "512MiB" or "2GB", as used by Config.LimitBytes.
// Values that don't fit an int64 are an error.
func ParseLimit(limit string) (int64, error) {
	n, err := humanize.ParseBytes(limit)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse limit %q", limit)
	}
	if n > math.MaxInt64 {
		return 0, errors.Errorf("limit %q is too large", limit)
	}
	return int64(n), nil
}

// String implements fmt.Stringer.
func (c Config) String() string {
	s := "alignalloc.Config{enabled=" + strconv.FormatBool(c.Enabled) + ", backend=" + strconv.Quote(c.Backend)
	if c.LimitBytes > 0 {
		s += ", limit=" + humanize.IBytes(uint64(c.LimitBytes))
	}
	if c.Quiet {
		s += ", quiet"
	}
	return s + "}"
}
