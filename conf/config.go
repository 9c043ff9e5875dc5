// Package conf loads codecctl's settings, adapted from the teacher's
// server/conf/config.go: a primary TOML config file for eval-context
// defaults and the storage backend selection. CommandLineArgs carries
// a CredentialsPath, but Load does not read it; the ini credentials
// loader is storage.LoadBackendOptions, which this package does not
// call.
package conf

import (
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pingcap/errors"

	"github.com/zhukovaskychina/tidb-codec-core/codec/evalctx"
)

// CommandLineArgs mirrors the teacher's CommandLineArgs shape.
type CommandLineArgs struct {
	ConfigPath      string
	CredentialsPath string
}

// Cfg is codecctl's resolved configuration.
type Cfg struct {
	TimeZone        string
	SQLMode         evalctx.SQLMode
	IgnoreTruncate  bool
	StorageBackend  string // "local" or "noop"
	StorageBasePath string
}

// NewCfg returns the permissive defaults a fresh install starts from,
// matching the teacher's NewCfg()'s role for server/conf.Cfg.
func NewCfg() *Cfg {
	return &Cfg{
		TimeZone:       "UTC",
		SQLMode:        evalctx.ModeNone,
		IgnoreTruncate: false,
		StorageBackend: "noop",
	}
}

// Load reads args.ConfigPath (TOML) over the defaults, when present.
// A missing path is not an error — codecctl runs fine unconfigured.
func (c *Cfg) Load(args *CommandLineArgs) (*Cfg, error) {
	if args == nil || args.ConfigPath == "" {
		return c, nil
	}
	tree, err := toml.LoadFile(args.ConfigPath)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load config %q", args.ConfigPath)
	}
	if v, ok := tree.Get("time_zone").(string); ok {
		c.TimeZone = v
	}
	if v, ok := tree.Get("ignore_truncate").(bool); ok {
		c.IgnoreTruncate = v
	}
	if v, ok := tree.Get("storage.backend").(string); ok {
		c.StorageBackend = v
	}
	if v, ok := tree.Get("storage.base_path").(string); ok {
		c.StorageBasePath = v
	}
	if v, ok := tree.Get("sql_mode.no_zero_date").(bool); ok && v {
		c.SQLMode |= evalctx.ModeNoZeroDate
	}
	if v, ok := tree.Get("sql_mode.no_zero_in_date").(bool); ok && v {
		c.SQLMode |= evalctx.ModeNoZeroInDate
	}
	if v, ok := tree.Get("sql_mode.invalid_dates").(bool); ok && v {
		c.SQLMode |= evalctx.ModeInvalidDates
	}
	if v, ok := tree.Get("sql_mode.strict_all_tables").(bool); ok && v {
		c.SQLMode |= evalctx.ModeStrictAllTables
	}
	return c, nil
}

// NewContext builds the evalctx.Context codecctl's operations share,
// resolving the configured time zone name via the system zoneinfo
// database.
func (c *Cfg) NewContext() (*evalctx.Context, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, errors.Annotatef(err, "unknown time zone %q", c.TimeZone)
	}
	ctx := evalctx.New()
	ctx.Location = loc
	ctx.SQLMode = c.SQLMode
	if c.IgnoreTruncate {
		ctx.Flags |= evalctx.FlagIgnoreTruncate
	}
	return ctx, nil
}
