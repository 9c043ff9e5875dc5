// codecctl is a small CLI over the codec packages: encode a JSON
// string scalar, parse a MySQL datetime string into its canonical or
// sortable-u64 form, and archive files through storage.Backend.
// Adapted from the teacher's main.go command-line shape (flag-based subcommands, conf.Cfg
// loading, logger.InitLogger).
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"

	"github.com/zhukovaskychina/tidb-codec-core/codec/json"
	"github.com/zhukovaskychina/tidb-codec-core/codec/sqltime"
	"github.com/zhukovaskychina/tidb-codec-core/conf"
	"github.com/zhukovaskychina/tidb-codec-core/logger"
	"github.com/zhukovaskychina/tidb-codec-core/storage"
)

const help = `
codecctl — encode/decode fixtures for the binary JSON, time and lock codecs

Usage:
  codecctl -configPath <file> <command> [args]

Commands:
  json-encode  <string-literal>      encode a JSON scalar string and print its hex bytes
  time-parse   <datetime-string>     parse a datetime string and print its canonical form
  time-sortable <datetime-string>    parse a datetime string and print its sortable u64 key form
  archive save <name> <file>         save a local file through the configured storage backend
  archive load <name> <file>         load a file from the configured storage backend
`

func main() {
	var configPath string
	var compress string
	flag.StringVar(&configPath, "configPath", "", "path to a TOML config file")
	flag.StringVar(&compress, "compress", "none", "archive compression: none, snappy (save path), lz4 (export path)")
	flag.Parse()

	if err := logger.InitLogger(logger.LogConfig{LogLevel: "info"}); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}

	cfg, err := conf.NewCfg().Load(&conf.CommandLineArgs{ConfigPath: configPath})
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Print(help)
		os.Exit(1)
	}

	if err := dispatch(cfg, args, compress); err != nil {
		logger.Errorf("codecctl: %v", err)
		os.Exit(1)
	}
}

func dispatch(cfg *conf.Cfg, args []string, compress string) error {
	switch args[0] {
	case "json-encode":
		if len(args) != 2 {
			return fmt.Errorf("json-encode requires exactly one string argument")
		}
		doc := json.FromString(args[1])
		fmt.Printf("%x\n", json.Encode(doc))
		return nil
	case "time-parse":
		if len(args) != 2 {
			return fmt.Errorf("time-parse requires exactly one datetime argument")
		}
		ctx, err := cfg.NewContext()
		if err != nil {
			return err
		}
		t, err := sqltime.ParseFromString(ctx, args[1], sqltime.TypeDateTime, 6)
		if err != nil {
			return err
		}
		fmt.Println(t.String())
		return nil
	case "time-sortable":
		if len(args) != 2 {
			return fmt.Errorf("time-sortable requires exactly one datetime argument")
		}
		ctx, err := cfg.NewContext()
		if err != nil {
			return err
		}
		t, err := sqltime.ParseFromString(ctx, args[1], sqltime.TypeTimestamp, 6)
		if err != nil {
			return err
		}
		fmt.Printf("%d\n", sqltime.ToSortableUint64(ctx, t))
		return nil
	case "archive":
		return archive(cfg, args[1:], compress)
	default:
		fmt.Print(help)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func backendFor(cfg *conf.Cfg) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocal(cfg.StorageBasePath)
	default:
		return storage.Noop{}, nil
	}
}

// archive saves or loads a fixture through the configured storage
// backend. "save" optionally compresses with snappy, matching the
// teacher's own wire-compression use in server/net/connection.go;
// "load" optionally decompresses with lz4, the export-path codec
// SPEC_FULL.md §6.4 reserves for this command.
func archive(cfg *conf.Cfg, args []string, compress string) error {
	if len(args) != 3 {
		return fmt.Errorf("archive requires: <save|load> <name> <file>")
	}
	backend, err := backendFor(cfg)
	if err != nil {
		return err
	}
	op, name, path := args[0], args[1], args[2]
	switch op {
	case "save":
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if compress == "snappy" {
			raw = snappy.Encode(nil, raw)
		}
		return backend.Write(name, bytes.NewReader(raw), int64(len(raw)))
	case "load":
		r, err := backend.Read(name)
		if err != nil {
			return err
		}
		defer r.Close()
		var src io.Reader = r
		if compress == "lz4" {
			src = lz4.NewReader(r)
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, src); err != nil {
			return err
		}
		return os.WriteFile(path, buf.Bytes(), 0o644)
	default:
		return fmt.Errorf("unknown archive op %q", op)
	}
}
