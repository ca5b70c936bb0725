// Command mdgen-bench runs the dumper core end to end against a directory
// of files, writing the three output streams to disk. It exists to give
// the core a runnable entry point; it is not part of the core's contract.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	dumper "github.com/mdgen/dumper"
	"github.com/mdgen/dumper/cache"
	"github.com/mdgen/dumper/extract"
	"github.com/mdgen/dumper/metrics"
	"github.com/mdgen/dumper/record"
	"github.com/mdgen/dumper/store"
	"github.com/mdgen/dumper/writer"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:  "mdgen-bench",
		Usage: "dump metadata for every file under a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "directory to walk for package files",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Value: ".",
				Usage: "output directory for primary.xml/filelists.xml/other.xml",
			},
			&cli.UintFlag{
				Name:  "workers",
				Value: 4,
				Usage: "fixed worker pool size (0 selects a dynamic pool)",
			},
			&cli.StringFlag{
				Name:  "checksum",
				Value: "sha256",
				Usage: "checksum type: md5, sha1, or sha256",
			},
			&cli.BoolFlag{
				Name:  "index",
				Usage: "also populate a buntdb auxiliary index (one index.db shared by all three sinks)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("mdgen-bench failed")
	}
}

func run(c *cli.Context) error {
	dir := c.String("dir")
	outDir := c.String("out")
	checksumType, err := parseChecksumType(c.String("checksum"))
	if err != nil {
		return err
	}

	tasks, err := walkTasks(dir)
	if err != nil {
		return fmt.Errorf("mdgen-bench: walk %s: %w", dir, err)
	}
	if len(tasks) == 0 {
		return fmt.Errorf("mdgen-bench: no files found under %s", dir)
	}
	log.Info().Int("count", len(tasks)).Str("dir", dir).Msg("discovered tasks")

	withIndex := c.Bool("index")
	sinks, cleanup, err := openSinks(outDir, withIndex)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := dumper.Config{
		ChecksumType:         checksumType,
		LocationBase:         "",
		WorkerCount:          c.Uint("workers"),
		MetricsProvider:      metrics.NewBasicProvider(),
		EnablePrimaryIndex:   withIndex,
		EnableFilelistsIndex: withIndex,
		EnableOtherIndex:     withIndex,
	}

	start := time.Now()
	err = dumper.Run(context.Background(), cfg, tasks, &extract.FileExtractor{}, extract.XMLRenderer{}, cache.New(nil), sinks)
	if err != nil {
		return fmt.Errorf("mdgen-bench: run: %w", err)
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("run complete")
	return nil
}

func parseChecksumType(s string) (record.ChecksumType, error) {
	switch s {
	case "md5":
		return record.MD5, nil
	case "sha1":
		return record.SHA1, nil
	case "sha256":
		return record.SHA256, nil
	default:
		return 0, fmt.Errorf("mdgen-bench: unknown checksum type %q", s)
	}
}

func walkTasks(root string) ([]record.Task, error) {
	var tasks []record.Task
	var id uint64

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			tasks = append(tasks, record.Task{
				ID:          id,
				FullPath:    path,
				FileName:    filepath.Base(path),
				DisplayPath: rel,
			})
			id++
			return nil
		},
		Unsorted: false,
	})
	return tasks, err
}

func openSinks(outDir string, withIndex bool) (writer.Sinks, func(), error) {
	primaryFile, err := os.Create(filepath.Join(outDir, "primary.xml"))
	if err != nil {
		return writer.Sinks{}, nil, err
	}
	filelistsFile, err := os.Create(filepath.Join(outDir, "filelists.xml"))
	if err != nil {
		primaryFile.Close()
		return writer.Sinks{}, nil, err
	}
	otherFile, err := os.Create(filepath.Join(outDir, "other.xml"))
	if err != nil {
		primaryFile.Close()
		filelistsFile.Close()
		return writer.Sinks{}, nil, err
	}

	sinks := writer.Sinks{
		Primary:   writer.SinkConfig{Appender: store.NewFileAppender(primaryFile)},
		Filelists: writer.SinkConfig{Appender: store.NewFileAppender(filelistsFile)},
		Other:     writer.SinkConfig{Appender: store.NewFileAppender(otherFile)},
	}

	closers := []*os.File{primaryFile, filelistsFile, otherFile}

	if withIndex {
		idx, err := store.OpenBuntIndex(filepath.Join(outDir, "index.db"))
		if err != nil {
			for _, f := range closers {
				f.Close()
			}
			return writer.Sinks{}, nil, err
		}
		sinks.Primary.Indexer, sinks.Primary.EnableIndex = idx, true
		sinks.Filelists.Indexer, sinks.Filelists.EnableIndex = idx, true
		sinks.Other.Indexer, sinks.Other.EnableIndex = idx, true

		return sinks, func() {
			idx.Close()
			for _, f := range closers {
				f.Close()
			}
		}, nil
	}

	return sinks, func() {
		for _, f := range closers {
			f.Close()
		}
	}, nil
}
